package blockchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const pairABIJSON = `[
	{"inputs":[],"name":"getReserves","outputs":[
		{"internalType":"uint112","name":"_reserve0","type":"uint112"},
		{"internalType":"uint112","name":"_reserve1","type":"uint112"},
		{"internalType":"uint32","name":"_blockTimestampLast","type":"uint32"}
	],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"token0","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"token1","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

const routerABIJSON = `[
	{"inputs":[
		{"internalType":"uint256","name":"amountIn","type":"uint256"},
		{"internalType":"address[]","name":"path","type":"address[]"}
	],"name":"getAmountsOut","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[
		{"internalType":"uint256","name":"amountIn","type":"uint256"},
		{"internalType":"uint256","name":"amountOutMin","type":"uint256"},
		{"internalType":"address[]","name":"path","type":"address[]"},
		{"internalType":"address","name":"to","type":"address"},
		{"internalType":"uint256","name":"deadline","type":"uint256"}
	],"name":"swapExactTokensForTokens","outputs":[{"internalType":"uint256[]","name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
]`

const oracleABIJSON = `[
	{"inputs":[{"internalType":"address","name":"token","type":"address"}],"name":"getUSDPrice","outputs":[
		{"internalType":"uint256","name":"pxE18","type":"uint256"},
		{"internalType":"uint256","name":"updatedAt","type":"uint256"}
	],"stateMutability":"view","type":"function"}
]`

const erc20ABIJSON = `[
	{"constant":true,"inputs":[
		{"name":"owner","type":"address"},
		{"name":"spender","type":"address"}
	],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[
		{"name":"spender","type":"address"},
		{"name":"value","type":"uint256"}
	],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// Parsed contract ABIs. The execution builder packs calldata with RouterABI and ERC20ABI.
var (
	PairABI   = mustParseABI(pairABIJSON)
	RouterABI = mustParseABI(routerABIJSON)
	OracleABI = mustParseABI(oracleABIJSON)
	ERC20ABI  = mustParseABI(erc20ABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid contract ABI: " + err.Error())
	}
	return parsed
}
