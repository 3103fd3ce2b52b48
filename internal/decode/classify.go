package decode

import (
	"strings"

	"github.com/emperorhan/multichain-ingestor/internal/domain/model"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Records groups the rows derived from decoded calls and events.
type Records struct {
	TokenTransfers []model.TokenTransfer
	NFTTransfers   []model.NFTTransfer
	DeFi           []model.DeFiInteraction
}

func (r *Records) Merge(o Records) {
	r.TokenTransfers = append(r.TokenTransfers, o.TokenTransfers...)
	r.NFTTransfers = append(r.NFTTransfers, o.NFTTransfers...)
	r.DeFi = append(r.DeFi, o.DeFi...)
}

func (r Records) Len() int {
	return len(r.TokenTransfers) + len(r.NFTTransfers) + len(r.DeFi)
}

// EventContext locates a log within its transaction.
type EventContext struct {
	ChainID     model.ChainID
	TxHash      string
	LogIndex    int64
	BlockNumber int64
	Contract    string
	TxFrom      string
}

// CallContext describes a top-level call. TransferLogContracts holds the
// contracts that emitted a Transfer log in the same receipt.
type CallContext struct {
	ChainID              model.ChainID
	TxHash               string
	BlockNumber          int64
	From                 string
	To                   string
	TransferLogContracts map[string]bool
}

// ClassifyEvent derives transfer and DeFi rows from a decoded event. The
// DeFi match is name based and only a guess.
func ClassifyEvent(ec EventContext, r Result) Records {
	var out Records
	d, ok := r.(Decoded)
	if !ok || d.Args == nil {
		return out
	}
	contract := strings.ToLower(ec.Contract)

	switch d.Name {
	case "Transfer":
		from, okFrom := d.ArgString("from")
		to, okTo := d.ArgString("to")
		if !okFrom || !okTo {
			break
		}
		if tokenID, ok := d.ArgString("tokenId"); ok {
			out.NFTTransfers = append(out.NFTTransfers, model.NFTTransfer{
				ChainID:         ec.ChainID,
				TxHash:          ec.TxHash,
				LogIndex:        ec.LogIndex,
				BlockNumber:     ec.BlockNumber,
				ContractAddress: contract,
				FromAddress:     from,
				ToAddress:       to,
				TokenID:         tokenID,
				Quantity:        "1",
				TransferType:    transferType(from, to),
			})
			break
		}
		if value, ok := d.ArgString("value"); ok {
			out.TokenTransfers = append(out.TokenTransfers, model.TokenTransfer{
				ChainID:         ec.ChainID,
				TxHash:          ec.TxHash,
				LogIndex:        ec.LogIndex,
				BlockNumber:     ec.BlockNumber,
				ContractAddress: contract,
				FromAddress:     from,
				ToAddress:       to,
				Amount:          value,
				TransferType:    transferType(from, to),
			})
		}
	case "TransferSingle":
		from, okFrom := d.ArgString("from")
		to, okTo := d.ArgString("to")
		id, okID := d.ArgString("id")
		value, okValue := d.ArgString("value")
		if okFrom && okTo && okID && okValue {
			out.NFTTransfers = append(out.NFTTransfers, model.NFTTransfer{
				ChainID:         ec.ChainID,
				TxHash:          ec.TxHash,
				LogIndex:        ec.LogIndex,
				BlockNumber:     ec.BlockNumber,
				ContractAddress: contract,
				FromAddress:     from,
				ToAddress:       to,
				TokenID:         id,
				Quantity:        value,
				TransferType:    transferType(from, to),
			})
		}
	case "Swap":
		protocol := "uniswap-v2"
		if _, ok := d.Arg("sqrtPriceX96"); ok {
			protocol = "uniswap-v3"
		}
		out.DeFi = append(out.DeFi, model.DeFiInteraction{
			ChainID:         ec.ChainID,
			TxHash:          ec.TxHash,
			LogIndex:        ec.LogIndex,
			BlockNumber:     ec.BlockNumber,
			ContractAddress: contract,
			UserAddress:     strings.ToLower(ec.TxFrom),
			Action:          "swap",
			ProtocolGuess:   protocol,
		})
	}
	return out
}

// ClassifyCall derives rows from a decoded top-level call. Direct
// transfer/transferFrom calls yield a token transfer only when the contract
// emitted no Transfer log of its own.
func ClassifyCall(cc CallContext, r Result) Records {
	var out Records
	d, ok := r.(Decoded)
	if !ok {
		return out
	}
	to := strings.ToLower(cc.To)
	from := strings.ToLower(cc.From)

	if d.Args != nil && (d.Name == "transfer" || d.Name == "transferFrom") && !cc.TransferLogContracts[to] {
		if t, ok := callTransfer(cc, d, from, to); ok {
			out.TokenTransfers = append(out.TokenTransfers, t)
		}
	}

	if action, protocol, ok := defiAction(d.Name, d.Signature); ok {
		out.DeFi = append(out.DeFi, model.DeFiInteraction{
			ChainID:         cc.ChainID,
			TxHash:          cc.TxHash,
			LogIndex:        model.CallLogIndex,
			BlockNumber:     cc.BlockNumber,
			ContractAddress: to,
			UserAddress:     from,
			Action:          action,
			ProtocolGuess:   protocol,
		})
	}
	return out
}

func callTransfer(cc CallContext, d Decoded, from, contract string) (model.TokenTransfer, bool) {
	sender := from
	if d.Name == "transferFrom" {
		s, ok := d.ArgString("from")
		if !ok {
			return model.TokenTransfer{}, false
		}
		sender = s
	}
	recipient, okTo := d.ArgString("to")
	amount, okAmount := d.ArgString("value")
	if !okTo || !okAmount {
		return model.TokenTransfer{}, false
	}
	return model.TokenTransfer{
		ChainID:         cc.ChainID,
		TxHash:          cc.TxHash,
		LogIndex:        model.CallLogIndex,
		BlockNumber:     cc.BlockNumber,
		ContractAddress: contract,
		FromAddress:     sender,
		ToAddress:       recipient,
		Amount:          amount,
		TransferType:    transferType(sender, recipient),
	}, true
}

func transferType(from, to string) model.TransferType {
	switch {
	case strings.EqualFold(from, zeroAddress):
		return model.TransferTypeMint
	case strings.EqualFold(to, zeroAddress):
		return model.TransferTypeBurn
	}
	return model.TransferTypeTransfer
}

// defiAction maps a function name to an action and a protocol guess.
func defiAction(name, signature string) (action, protocol string, ok bool) {
	switch {
	case strings.HasPrefix(name, "exactInput"), strings.HasPrefix(name, "exactOutput"):
		return "swap", "uniswap-v3", true
	case strings.HasPrefix(name, "swap"):
		return "swap", "uniswap-v2", true
	case strings.HasPrefix(name, "addLiquidity"):
		return "add_liquidity", "uniswap-v2", true
	case strings.HasPrefix(name, "removeLiquidity"):
		return "remove_liquidity", "uniswap-v2", true
	}

	switch name {
	case "mint", "redeem", "redeemUnderlying", "borrow":
		return strings.ToLower(strings.TrimSuffix(name, "Underlying")), "compound", true
	case "repayBorrow":
		return "repay", "compound", true
	case "liquidateBorrow":
		return "liquidate", "compound", true
	case "flashLoan":
		return "flash_loan", "aave", true
	case "deposit", "withdraw":
		// The pool variants take an asset address; the bare ones are WETH.
		if strings.Contains(signature, "address") {
			return name, "aave", true
		}
		return name, "weth", true
	}
	return "", "", false
}
