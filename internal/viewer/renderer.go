package viewer

import (
	"fmt"
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/skymesh/actools/internal/logger"
	"github.com/skymesh/actools/pkg/math"
)

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;
layout (location = 3) in vec3 aColor;

uniform mat4 uMVP;

out vec3 vNormal;
out vec2 vUV;
out vec3 vColor;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vNormal = aNormal;
	vUV = aUV;
	vColor = aColor;
}
` + "\x00"

const fragmentShaderSource = `
#version 410 core

in vec3 vNormal;
in vec2 vUV;
in vec3 vColor;

uniform bool uUseTexture;
uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
	vec3 lightDir = normalize(vec3(0.4, 0.8, 0.6));
	float diffuse = max(abs(dot(normalize(vNormal), lightDir)), 0.0);
	float light = 0.35 + 0.65 * diffuse;

	vec3 base = vColor;
	if (uUseTexture) {
		base *= texture(uTexture, vUV).rgb;
	}
	FragColor = vec4(base * light, 1.0);
}
` + "\x00"

// Renderer draws uploaded render data with a single shaded program.
// Create it only after the GL context exists.
type Renderer struct {
	program    uint32
	vao        uint32
	vbo        uint32
	uMVP       int32
	uUseTex    int32
	primitives []Primitive
	textures   map[string]uint32
}

// NewRenderer initializes OpenGL state and compiles the shader program.
func NewRenderer(width, height int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.13, 0.14, 0.17, 1.0)
	gl.Viewport(0, 0, int32(width), int32(height))

	program, err := compileProgram(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		program:  program,
		uMVP:     gl.GetUniformLocation(program, gl.Str("uMVP\x00")),
		uUseTex:  gl.GetUniformLocation(program, gl.Str("uUseTexture\x00")),
		textures: make(map[string]uint32),
	}
	return r, nil
}

// Close releases all GL resources.
func (r *Renderer) Close() {
	for _, tex := range r.textures {
		gl.DeleteTextures(1, &tex)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Upload replaces the current geometry with rd.
func (r *Renderer) Upload(rd *RenderData) {
	if r.vao == 0 {
		gl.GenVertexArrays(1, &r.vao)
		gl.GenBuffers(1, &r.vbo)
	}
	r.primitives = rd.Primitives

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if len(rd.Vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(rd.Vertices)*4, unsafe.Pointer(&rd.Vertices[0]), gl.STATIC_DRAW)
	}

	stride := int32(vertexFloats * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(3, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(8*4)))
	gl.EnableVertexAttribArray(3)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("geometry uploaded",
		zap.Int("vertices", len(rd.Vertices)/vertexFloats),
		zap.Int("primitives", len(rd.Primitives)),
	)
}

// AddTexture uploads an RGBA image under the model's texture reference.
func (r *Renderer) AddTexture(name string, img *image.RGBA) {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.textures[name] = tex
}

// Draw renders one frame with the given combined view-projection matrix.
func (r *Renderer) Draw(viewProj math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uMVP, 1, false, viewProj.Ptr())
	gl.BindVertexArray(r.vao)

	for _, p := range r.primitives {
		if p.TwoSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}

		tex, ok := r.textures[p.Texture]
		if ok && p.Texture != "" {
			gl.Uniform1i(r.uUseTex, 1)
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, tex)
		} else {
			gl.Uniform1i(r.uUseTex, 0)
		}

		gl.DrawArrays(gl.TRIANGLES, p.First, p.Count)
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.CULL_FACE)
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("shader link failed: %s", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader compile failed: %s", name, log)
	}
	return shader, nil
}
