package decode

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// parsedSignature is a text signature compiled into ABI arguments.
type parsedSignature struct {
	Name string
	Text string
	Args abi.Arguments
}

// parseSignature compiles a canonical text signature such as
// "swap((address,uint256),bytes)" into ABI arguments. Missing names become
// arg0, arg1, ...; indexed marks event arguments stored in topics.
func parseSignature(text string, names []string, indexed []bool) (*parsedSignature, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open <= 0 || !strings.HasSuffix(text, ")") {
		return nil, fmt.Errorf("malformed signature %q", text)
	}
	name := text[:open]
	params, err := splitTopLevel(text[open+1 : len(text)-1])
	if err != nil {
		return nil, fmt.Errorf("signature %q: %w", text, err)
	}

	args := make(abi.Arguments, 0, len(params))
	for i, p := range params {
		marshaling, err := toMarshaling(p, argName(names, i))
		if err != nil {
			return nil, fmt.Errorf("signature %q param %d: %w", text, i, err)
		}
		typ, err := abi.NewType(marshaling.Type, "", marshaling.Components)
		if err != nil {
			return nil, fmt.Errorf("signature %q param %d: %w", text, i, err)
		}
		args = append(args, abi.Argument{
			Name:    marshaling.Name,
			Type:    typ,
			Indexed: i < len(indexed) && indexed[i],
		})
	}
	return &parsedSignature{Name: name, Text: text, Args: args}, nil
}

func argName(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("arg%d", i)
}

// toMarshaling turns one parameter type into the form abi.NewType expects,
// expanding tuple syntax "(t1,t2)[]" into components.
func toMarshaling(param, name string) (abi.ArgumentMarshaling, error) {
	param = strings.TrimSpace(param)
	if fields := strings.Fields(param); len(fields) > 1 && !strings.HasPrefix(param, "(") {
		// "address indexed from" style fragments keep only the type.
		param = fields[0]
	}
	if !strings.HasPrefix(param, "(") {
		if param == "" {
			return abi.ArgumentMarshaling{}, fmt.Errorf("empty type")
		}
		return abi.ArgumentMarshaling{Name: name, Type: canonicalType(param)}, nil
	}

	closeIdx := matchingParen(param)
	if closeIdx < 0 {
		return abi.ArgumentMarshaling{}, fmt.Errorf("unbalanced tuple %q", param)
	}
	inner, suffix := param[1:closeIdx], param[closeIdx+1:]
	parts, err := splitTopLevel(inner)
	if err != nil {
		return abi.ArgumentMarshaling{}, err
	}
	components := make([]abi.ArgumentMarshaling, 0, len(parts))
	for i, p := range parts {
		c, err := toMarshaling(p, fmt.Sprintf("f%d", i))
		if err != nil {
			return abi.ArgumentMarshaling{}, err
		}
		components = append(components, c)
	}
	return abi.ArgumentMarshaling{Name: name, Type: "tuple" + suffix, Components: components}, nil
}

func canonicalType(t string) string {
	switch {
	case t == "uint":
		return "uint256"
	case t == "int":
		return "int256"
	case strings.HasPrefix(t, "uint["):
		return "uint256" + t[4:]
	case strings.HasPrefix(t, "int["):
		return "int256" + t[3:]
	}
	return t
}

func matchingParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas outside parentheses.
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses")
	}
	return append(parts, s[start:]), nil
}

// canonicalText rebuilds the hashed form of a signature, e.g. stripping
// argument names and normalising uint to uint256.
func (p *parsedSignature) canonicalText() string {
	types := make([]string, len(p.Args))
	for i, a := range p.Args {
		types[i] = a.Type.String()
	}
	return p.Name + "(" + strings.Join(types, ",") + ")"
}

// FunctionSelector returns the 0x-prefixed 4-byte selector of a text signature.
func FunctionSelector(text string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(text))[:4])
}

// EventTopic returns the 0x-prefixed keccak256 topic hash of a text signature.
func EventTopic(text string) string {
	return crypto.Keccak256Hash([]byte(text)).Hex()
}
