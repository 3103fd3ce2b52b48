package decode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
	"github.com/emperorhan/multichain-ingestor/internal/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Decoder turns call data and logs into Results. It never returns an error:
// anything it cannot interpret comes back as Unresolved or as Decoded with
// nil Args.
type Decoder struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewDecoder(resolver *Resolver, logger *slog.Logger) *Decoder {
	return &Decoder{
		resolver: resolver,
		logger:   logger.With("component", "decoder"),
	}
}

// Resolver exposes the underlying signature resolver.
func (d *Decoder) Resolver() *Resolver {
	return d.resolver
}

// DecodeFunction decodes hex call data. Input shorter than a selector yields
// Unresolved with an empty selector.
func (d *Decoder) DecodeFunction(ctx context.Context, input string) Result {
	data, err := hexutil.Decode(normalizeHex(input))
	if err != nil || len(data) < 4 {
		return Unresolved{}
	}
	selector := hexutil.Encode(data[:4])

	sig, ok := d.resolver.ResolveFunction(ctx, selector)
	if !ok {
		metrics.DecodeUnresolvedTotal.WithLabelValues("function").Inc()
		return Unresolved{Selector: selector}
	}

	result := Decoded{Name: sig.Name, Selector: selector, Signature: sig.TextSignature}
	parsed, err := parseSignature(sig.TextSignature, sig.ParamNames, nil)
	if err != nil {
		d.logger.Debug("signature does not compile", "selector", selector, "signature", sig.TextSignature, "error", err)
		return result
	}
	values, err := safeUnpack(parsed.Args, data[4:])
	if err != nil {
		d.logger.Debug("call arguments do not decode", "selector", selector, "signature", sig.TextSignature, "error", err)
		return result
	}
	result.Args = make([]Arg, len(parsed.Args))
	for i, a := range parsed.Args {
		result.Args[i] = Arg{Name: a.Name, Type: a.Type.String(), Value: normalizeValue(values[i])}
	}
	return result
}

// DecodeEvent decodes a log. When several signature variants share the
// topic, the one whose indexed count matches the topic count wins.
func (d *Decoder) DecodeEvent(ctx context.Context, topics []string, data string) Result {
	if len(topics) == 0 {
		return Unresolved{}
	}
	topic := strings.ToLower(topics[0])

	variants, ok := d.resolver.ResolveEvent(ctx, topic)
	if !ok {
		metrics.DecodeUnresolvedTotal.WithLabelValues("event").Inc()
		return Unresolved{Selector: topic}
	}

	raw, err := hexutil.Decode(normalizeHex(data))
	if err != nil {
		raw = nil
	}
	indexedCount := len(topics) - 1

	var fallback *Decoded
	for _, v := range variants {
		parsed, err := d.compileEvent(v, indexedCount)
		if err != nil {
			continue
		}
		result := Decoded{Name: v.Name, Selector: topic, Signature: v.TextSignature}
		if countIndexed(parsed.Args) != indexedCount {
			if fallback == nil {
				fallback = &result
			}
			continue
		}
		args, err := unpackEvent(parsed.Args, topics[1:], raw)
		if err != nil {
			d.logger.Debug("event arguments do not decode", "topic", topic, "signature", v.TextSignature, "error", err)
			if fallback == nil {
				fallback = &result
			}
			continue
		}
		result.Args = args
		return result
	}
	if fallback != nil {
		return *fallback
	}
	v := variants[0]
	return Decoded{Name: v.Name, Selector: topic, Signature: v.TextSignature}
}

// compileEvent parses a variant. Signatures without indexed information
// (external lookups) assume the leading parameters are the indexed ones.
func (d *Decoder) compileEvent(sig model.EventSignature, indexedCount int) (*parsedSignature, error) {
	indexed := sig.Indexed
	if len(indexed) == 0 && indexedCount > 0 {
		indexed = make([]bool, indexedCount)
		for i := range indexed {
			indexed[i] = true
		}
	}
	return parseSignature(sig.TextSignature, sig.ParamNames, indexed)
}

func countIndexed(args abi.Arguments) int {
	n := 0
	for _, a := range args {
		if a.Indexed {
			n++
		}
	}
	return n
}

func unpackEvent(args abi.Arguments, topics []string, data []byte) ([]Arg, error) {
	var nonIndexed abi.Arguments
	for _, a := range args {
		if !a.Indexed {
			nonIndexed = append(nonIndexed, a)
		}
	}
	values, err := safeUnpack(nonIndexed, data)
	if err != nil {
		return nil, err
	}

	out := make([]Arg, 0, len(args))
	ti, vi := 0, 0
	for _, a := range args {
		arg := Arg{Name: a.Name, Type: a.Type.String(), Indexed: a.Indexed}
		if a.Indexed {
			v, err := decodeTopic(a, topics[ti])
			if err != nil {
				return nil, err
			}
			arg.Value = v
			ti++
		} else {
			arg.Value = normalizeValue(values[vi])
			vi++
		}
		out = append(out, arg)
	}
	return out, nil
}

// decodeTopic unpacks a static indexed value from its 32-byte topic. Dynamic
// values are stored hashed, so the topic itself is returned.
func decodeTopic(a abi.Argument, topic string) (interface{}, error) {
	raw, err := hexutil.Decode(normalizeHex(topic))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("malformed topic %q", topic)
	}
	switch a.Type.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return strings.ToLower(topic), nil
	}
	single := abi.Arguments{{Name: a.Name, Type: a.Type}}
	values, err := safeUnpack(single, raw)
	if err != nil {
		return nil, err
	}
	return normalizeValue(values[0]), nil
}

// safeUnpack guards against panics inside the ABI unpacker on hostile input.
func safeUnpack(args abi.Arguments, data []byte) (values []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			values, err = nil, fmt.Errorf("abi unpack panic: %v", r)
		}
	}()
	if len(args) == 0 {
		return nil, nil
	}
	values, err = args.Unpack(data)
	if err != nil {
		return nil, err
	}
	if len(values) != len(args) {
		return nil, fmt.Errorf("abi unpack: got %d values for %d arguments", len(values), len(args))
	}
	return values, nil
}

// DecodeRevert extracts the reason from Error(string) or Panic(uint256)
// return data.
func DecodeRevert(output string) (string, bool) {
	data, err := hexutil.Decode(normalizeHex(output))
	if err != nil || len(data) < 4 {
		return "", false
	}
	reason, err := abi.UnpackRevert(data)
	if err != nil {
		return "", false
	}
	return reason, true
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "0x" {
		return "0x"
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	return s
}
