package model

// FunctionSignature maps a 4-byte selector to a text signature.
type FunctionSignature struct {
	Selector      string   `db:"selector"` // 0x + 8 hex
	Name          string   `db:"name"`
	TextSignature string   `db:"text_signature"`
	ParamNames    []string `db:"param_names"`
	Source        string   `db:"source"`
}

// EventSignature maps a 32-byte topic hash to a text signature. Several
// variants may share a topic hash when they only differ in indexed-ness.
type EventSignature struct {
	Topic         string   `db:"topic"` // 0x + 64 hex
	Name          string   `db:"name"`
	TextSignature string   `db:"text_signature"`
	ParamNames    []string `db:"param_names"`
	Indexed       []bool   `db:"indexed"`
	Source        string   `db:"source"`
}

const (
	SignatureSourceBuiltin  = "builtin"
	SignatureSourceExternal = "external"
)
