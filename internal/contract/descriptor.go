// Package contract holds the compiled-in call this console drives and the chain it
// must run on.
package contract

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Address of the operator registry on Plasma mainnet.
var Address = common.HexToAddress("0x7bdbd0A7114aA42CA957F292145F6a931a345583")

const abiJSON = `[
  {
    "type": "function",
    "name": "setAccountOperator",
    "stateMutability": "nonpayable",
    "inputs": [
      { "name": "account", "type": "address" },
      { "name": "operator", "type": "address" },
      { "name": "approved", "type": "bool" }
    ],
    "outputs": []
  }
]`

// Method is the single function the console calls.
const Method = "setAccountOperator"

// ABI is the parsed interface of the registry.
var ABI = mustParseABI(abiJSON)

// Args are the literal arguments of the call.
type Args struct {
	Account  common.Address `json:"account"`
	Operator common.Address `json:"operator"`
	Approved bool           `json:"approved"`
}

// CallDescriptor is immutable; Call is the only instance.
type CallDescriptor struct {
	To     common.Address
	Method string
	Args   Args
}

// Call is the fixed setAccountOperator invocation.
var Call = CallDescriptor{
	To:     Address,
	Method: Method,
	Args: Args{
		Account:  common.HexToAddress("0xa1ff1458aad268b846005ce26d36ec6a7fc658d8"),
		Operator: common.HexToAddress("0xE2fE67f1adef59621EdCdAd890dC7b9E31eC68a8"),
		Approved: false,
	},
}

// Data returns the ABI encoded calldata.
func (d CallDescriptor) Data() ([]byte, error) {
	data, err := ABI.Pack(d.Method, d.Args.Account, d.Args.Operator, d.Args.Approved)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", d.Method, err)
	}
	return data, nil
}

// Signature returns the canonical signature, e.g. setAccountOperator(address,address,bool).
func (d CallDescriptor) Signature() string {
	return ABI.Methods[d.Method].Sig
}

// Display lists the arguments in declaration order for read-only rendering.
func (d CallDescriptor) Display() []Argument {
	return []Argument{
		{Name: "account", Type: "address", Value: d.Args.Account.Hex()},
		{Name: "operator", Type: "address", Value: d.Args.Operator.Hex()},
		{Name: "approved", Type: "bool", Value: strconv.FormatBool(d.Args.Approved)},
	}
}

// Argument is one rendered call argument.
type Argument struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NativeCurrency follows the EIP-3085 nativeCurrency object.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Chain describes the network the call must execute on.
type Chain struct {
	ID                *big.Int
	Name              string
	RPCURLs           []string
	NativeCurrency    NativeCurrency
	BlockExplorerURLs []string
}

// Target is Plasma mainnet.
var Target = Chain{
	ID:      big.NewInt(9745),
	Name:    "Plasma",
	RPCURLs: []string{"https://rpc.plasma.to"},
	NativeCurrency: NativeCurrency{
		Name:     "XPL",
		Symbol:   "XPL",
		Decimals: 18,
	},
	BlockExplorerURLs: []string{"https://plasmascan.to/"},
}

// IDHex renders the chain id the way wallets report it: lowercase, 0x prefixed.
func (c Chain) IDHex() string {
	return HexChainID(c.ID)
}

// HexChainID formats id as lowercase 0x-prefixed hex.
func HexChainID(id *big.Int) string {
	if id == nil {
		return ""
	}
	return "0x" + id.Text(16)
}

// AddChainParams is the wallet_addEthereumChain parameter object (EIP-3085).
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// SwitchChainParams is the wallet_switchEthereumChain parameter object (EIP-3326).
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddParams returns the full descriptor handed to wallet_addEthereumChain.
func (c Chain) AddParams() AddChainParams {
	return AddChainParams{
		ChainID:           c.IDHex(),
		ChainName:         c.Name,
		RPCURLs:           c.RPCURLs,
		NativeCurrency:    c.NativeCurrency,
		BlockExplorerURLs: c.BlockExplorerURLs,
	}
}

func (c Chain) explorer() string {
	if len(c.BlockExplorerURLs) == 0 {
		return ""
	}
	return strings.TrimSuffix(c.BlockExplorerURLs[0], "/")
}

// TxURL links a transaction on the chain's explorer.
func (c Chain) TxURL(hash string) string {
	if hash == "" || c.explorer() == "" {
		return ""
	}
	return c.explorer() + "/tx/" + hash
}

// AddressURL links an account or contract on the chain's explorer.
func (c Chain) AddressURL(addr common.Address) string {
	if c.explorer() == "" {
		return ""
	}
	return c.explorer() + "/address/" + addr.Hex()
}

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("contract: invalid ABI: %v", err))
	}
	return parsed
}
