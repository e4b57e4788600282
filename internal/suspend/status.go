package suspend

// Status is the native status code returned by the OS for a suspend or
// resume request. Zero means success; any other value is OS-defined.
type Status uint32

// OK reports whether the OS accepted the request.
func (s Status) OK() bool {
	return s == 0
}
