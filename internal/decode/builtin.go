package decode

import "github.com/emperorhan/multichain-ingestor/internal/domain/model"

type builtinFunction struct {
	text  string
	names []string
}

type builtinEvent struct {
	text    string
	names   []string
	indexed []bool
}

// Common ERC-20/721/1155 and DeFi router/lending signatures seeded into the
// in-memory cache at startup.
var builtinFunctions = []builtinFunction{
	{"transfer(address,uint256)", []string{"to", "value"}},
	{"transferFrom(address,address,uint256)", []string{"from", "to", "value"}},
	{"approve(address,uint256)", []string{"spender", "value"}},
	{"safeTransferFrom(address,address,uint256)", []string{"from", "to", "tokenId"}},
	{"safeTransferFrom(address,address,uint256,bytes)", []string{"from", "to", "tokenId", "data"}},
	{"setApprovalForAll(address,bool)", []string{"operator", "approved"}},
	{"deposit()", nil},
	{"withdraw(uint256)", []string{"amount"}},
	{"multicall(bytes[])", []string{"data"}},
	{"swapExactTokensForTokens(uint256,uint256,address[],address,uint256)", []string{"amountIn", "amountOutMin", "path", "to", "deadline"}},
	{"swapTokensForExactTokens(uint256,uint256,address[],address,uint256)", []string{"amountOut", "amountInMax", "path", "to", "deadline"}},
	{"swapExactETHForTokens(uint256,address[],address,uint256)", []string{"amountOutMin", "path", "to", "deadline"}},
	{"swapExactTokensForETH(uint256,uint256,address[],address,uint256)", []string{"amountIn", "amountOutMin", "path", "to", "deadline"}},
	{"addLiquidity(address,address,uint256,uint256,uint256,uint256,address,uint256)", []string{"tokenA", "tokenB", "amountADesired", "amountBDesired", "amountAMin", "amountBMin", "to", "deadline"}},
	{"removeLiquidity(address,address,uint256,uint256,uint256,address,uint256)", []string{"tokenA", "tokenB", "liquidity", "amountAMin", "amountBMin", "to", "deadline"}},
	{"exactInputSingle((address,address,uint24,address,uint256,uint256,uint256,uint160))", []string{"params"}},
	{"mint(uint256)", []string{"mintAmount"}},
	{"redeem(uint256)", []string{"redeemTokens"}},
	{"borrow(uint256)", []string{"borrowAmount"}},
	{"repayBorrow(uint256)", []string{"repayAmount"}},
	{"liquidateBorrow(address,uint256,address)", []string{"borrower", "repayAmount", "cTokenCollateral"}},
	{"deposit(address,uint256,address,uint16)", []string{"asset", "amount", "onBehalfOf", "referralCode"}},
	{"withdraw(address,uint256,address)", []string{"asset", "amount", "to"}},
	{"flashLoan(address,address[],uint256[],uint256[],address,bytes,uint16)", []string{"receiverAddress", "assets", "amounts", "modes", "onBehalfOf", "params", "referralCode"}},
}

var builtinEvents = []builtinEvent{
	// ERC-20 and ERC-721 share the Transfer topic and differ in indexed-ness.
	{"Transfer(address,address,uint256)", []string{"from", "to", "value"}, []bool{true, true, false}},
	{"Transfer(address,address,uint256)", []string{"from", "to", "tokenId"}, []bool{true, true, true}},
	{"Approval(address,address,uint256)", []string{"owner", "spender", "value"}, []bool{true, true, false}},
	{"ApprovalForAll(address,address,bool)", []string{"owner", "operator", "approved"}, []bool{true, true, false}},
	{"TransferSingle(address,address,address,uint256,uint256)", []string{"operator", "from", "to", "id", "value"}, []bool{true, true, true, false, false}},
	{"Deposit(address,uint256)", []string{"dst", "wad"}, []bool{true, false}},
	{"Withdrawal(address,uint256)", []string{"src", "wad"}, []bool{true, false}},
	{"Swap(address,uint256,uint256,uint256,uint256,address)", []string{"sender", "amount0In", "amount1In", "amount0Out", "amount1Out", "to"}, []bool{true, false, false, false, false, true}},
	{"Swap(address,address,int256,int256,uint160,uint128,int24)", []string{"sender", "recipient", "amount0", "amount1", "sqrtPriceX96", "liquidity", "tick"}, []bool{true, true, false, false, false, false, false}},
	{"Sync(uint112,uint112)", []string{"reserve0", "reserve1"}, []bool{false, false}},
}

// BuiltinFunctionSignatures returns the seeded function signatures.
func BuiltinFunctionSignatures() []model.FunctionSignature {
	out := make([]model.FunctionSignature, 0, len(builtinFunctions))
	for _, f := range builtinFunctions {
		p, err := parseSignature(f.text, f.names, nil)
		if err != nil {
			panic("decode: invalid builtin function " + f.text + ": " + err.Error())
		}
		out = append(out, model.FunctionSignature{
			Selector:      FunctionSelector(f.text),
			Name:          p.Name,
			TextSignature: f.text,
			ParamNames:    f.names,
			Source:        model.SignatureSourceBuiltin,
		})
	}
	return out
}

// BuiltinEventSignatures returns the seeded event signatures, including
// variants that share a topic.
func BuiltinEventSignatures() []model.EventSignature {
	out := make([]model.EventSignature, 0, len(builtinEvents))
	for _, e := range builtinEvents {
		p, err := parseSignature(e.text, e.names, e.indexed)
		if err != nil {
			panic("decode: invalid builtin event " + e.text + ": " + err.Error())
		}
		out = append(out, model.EventSignature{
			Topic:         EventTopic(e.text),
			Name:          p.Name,
			TextSignature: e.text,
			ParamNames:    e.names,
			Indexed:       e.indexed,
			Source:        model.SignatureSourceBuiltin,
		})
	}
	return out
}
