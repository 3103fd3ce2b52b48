package rpc

import (
	"encoding/json"
	"fmt"
)

type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object. Data carries revert payloads on
// eth_call failures.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *RPCError) ErrorCode() int { return e.Code }

// HTTPStatusError is a non-200 answer from the endpoint.
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

func (e *HTTPStatusError) StatusCode() int { return e.Status }

// Block is an eth_getBlockByNumber result. Transactions is populated when the
// block was requested with full transactions, TransactionHashes otherwise.
type Block struct {
	Number            string         `json:"number"`
	Hash              string         `json:"hash"`
	ParentHash        string         `json:"parentHash"`
	Timestamp         string         `json:"timestamp"`
	GasUsed           string         `json:"gasUsed"`
	BaseFeePerGas     *string        `json:"baseFeePerGas,omitempty"`
	Transactions      []*Transaction `json:"transactions"`
	TransactionHashes []string       `json:"-"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	type blockAlias Block
	aux := struct {
		*blockAlias
		Transactions json.RawMessage `json:"transactions"`
	}{blockAlias: (*blockAlias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Transactions = nil
	b.TransactionHashes = nil
	if len(aux.Transactions) == 0 || string(aux.Transactions) == "null" {
		return nil
	}
	var full []*Transaction
	if err := json.Unmarshal(aux.Transactions, &full); err == nil {
		b.Transactions = full
		return nil
	}
	var hashes []string
	if err := json.Unmarshal(aux.Transactions, &hashes); err != nil {
		return fmt.Errorf("unmarshal block transactions: %w", err)
	}
	b.TransactionHashes = hashes
	return nil
}

// TxCount returns the number of transactions in either representation.
func (b *Block) TxCount() int {
	if b.Transactions != nil {
		return len(b.Transactions)
	}
	return len(b.TransactionHashes)
}

type Transaction struct {
	Hash             string `json:"hash"`
	BlockNumber      string `json:"blockNumber"`
	BlockHash        string `json:"blockHash"`
	TransactionIndex string `json:"transactionIndex"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	Nonce            string `json:"nonce"`
	Input            string `json:"input"`
}

type TransactionReceipt struct {
	TransactionHash   string  `json:"transactionHash"`
	BlockNumber       string  `json:"blockNumber"`
	BlockHash         string  `json:"blockHash"`
	TransactionIndex  string  `json:"transactionIndex"`
	Status            string  `json:"status"`
	From              string  `json:"from"`
	To                string  `json:"to"`
	ContractAddress   *string `json:"contractAddress"`
	GasUsed           string  `json:"gasUsed"`
	EffectiveGasPrice string  `json:"effectiveGasPrice"`
	Logs              []*Log  `json:"logs"`
}

type Log struct {
	Address          string   `json:"address"`
	Topics           []string `json:"topics"`
	Data             string   `json:"data"`
	BlockNumber      string   `json:"blockNumber"`
	BlockHash        string   `json:"blockHash"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
}

// LogFilter is the eth_getLogs filter object.
type LogFilter struct {
	FromBlock string        `json:"fromBlock"`
	ToBlock   string        `json:"toBlock"`
	Address   []string      `json:"address,omitempty"`
	Topics    []interface{} `json:"topics,omitempty"`
}

// NewLogFilter builds a filter over the inclusive block range [from, to].
func NewLogFilter(from, to int64, addresses []string) LogFilter {
	return LogFilter{
		FromBlock: formatHexInt64(from),
		ToBlock:   formatHexInt64(to),
		Address:   addresses,
	}
}

// CallMsg is the eth_call transaction object.
type CallMsg struct {
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
}

// CallFrame is one node of a callTracer result.
type CallFrame struct {
	Type    string      `json:"type"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Value   string      `json:"value,omitempty"`
	Gas     string      `json:"gas,omitempty"`
	GasUsed string      `json:"gasUsed,omitempty"`
	Input   string      `json:"input"`
	Output  string      `json:"output,omitempty"`
	Error   string      `json:"error,omitempty"`
	Calls   []CallFrame `json:"calls,omitempty"`
}
