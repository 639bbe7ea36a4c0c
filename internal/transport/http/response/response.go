package response

// Envelope is the uniform response body: {"success": bool, "message": ...}
// plus endpoint-specific fields added with With. Handlers never leak raw
// errors or stack traces through it.
type Envelope map[string]any

func OK(message string) Envelope {
	return Envelope{"success": true, "message": message}
}

func Fail(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

func (e Envelope) With(key string, v any) Envelope {
	e[key] = v
	return e
}
