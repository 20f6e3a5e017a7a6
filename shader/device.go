package shader

// Device creates native stage objects from SPIR-V code, one constructor per
// stage kind. It is injected into program construction rather than reached
// through a global accessor so that programs can be built against a fake
// device in tests. Implementations decide what concurrent use they allow;
// this package never calls a Device from more than one goroutine per
// construction.
type Device interface {
	CreateVertexShader(label string, code []uint32) (Handle, error)
	CreateFragmentShader(label string, code []uint32) (Handle, error)
	CreateComputeShader(label string, code []uint32) (Handle, error)
}

// Handle is an opaque native stage object. The Program owning a handle
// calls Release exactly once when the program is released.
type Handle interface {
	Release()
}
