package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quizstake/quizstake/pkg/logger"
)

// =============================================================================
// Quiz Ledger ABI (central, single source of truth)
// =============================================================================

const quizLedgerABIJSON = `[
  {"type":"function","name":"startQuiz","stateMutability":"nonpayable",
   "inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"claimReward","stateMutability":"nonpayable",
   "inputs":[{"name":"sessionId","type":"uint256"},{"name":"score","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"getQuizSession","stateMutability":"view",
   "inputs":[{"name":"sessionId","type":"uint256"}],
   "outputs":[
     {"name":"owner","type":"address"},
     {"name":"token","type":"address"},
     {"name":"startTime","type":"uint256"},
     {"name":"expiryTime","type":"uint256"},
     {"name":"active","type":"bool"},
     {"name":"claimed","type":"bool"},
     {"name":"score","type":"uint256"},
     {"name":"reward","type":"uint256"},
     {"name":"timeRemaining","type":"uint256"}]},
  {"type":"function","name":"getUserInfo","stateMutability":"view",
   "inputs":[{"name":"user","type":"address"}],
   "outputs":[
     {"name":"dailyCount","type":"uint256"},
     {"name":"lastQuizTime","type":"uint256"},
     {"name":"nextQuizTime","type":"uint256"},
     {"name":"wonToday","type":"uint256"},
     {"name":"canQuiz","type":"bool"}]},
  {"type":"function","name":"getContractStats","stateMutability":"view",
   "inputs":[{"name":"token","type":"address"}],
   "outputs":[
     {"name":"balance","type":"uint256"},
     {"name":"activeCount","type":"uint256"},
     {"name":"minBalance","type":"uint256"},
     {"name":"operational","type":"bool"},
     {"name":"totalQuizzes","type":"uint256"},
     {"name":"totalRewards","type":"uint256"},
     {"name":"totalFees","type":"uint256"}]},
  {"type":"event","name":"QuizStarted","anonymous":false,
   "inputs":[
     {"name":"sessionId","type":"uint256","indexed":true},
     {"name":"player","type":"address","indexed":true},
     {"name":"token","type":"address","indexed":false},
     {"name":"amount","type":"uint256","indexed":false}]}
]`

// QuizLedgerABI is the parsed quiz ledger interface.
var QuizLedgerABI = mustParseABI(quizLedgerABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse ABI: %v", err))
	}
	return parsed
}

// =============================================================================
// Ledger Read Types
// =============================================================================

// QuizSession is the per-session state held by the ledger.
type QuizSession struct {
	Owner         common.Address
	Token         common.Address
	StartTime     *big.Int
	ExpiryTime    *big.Int
	Active        bool
	Claimed       bool
	Score         *big.Int
	Reward        *big.Int
	TimeRemaining *big.Int
}

// UserInfo is the per-user state held by the ledger.
type UserInfo struct {
	DailyCount   *big.Int
	LastQuizTime *big.Int
	NextQuizTime *big.Int
	WonToday     *big.Int
	CanQuiz      bool
}

// ContractStats is the per-token operational state held by the ledger.
type ContractStats struct {
	Balance      *big.Int
	ActiveCount  *big.Int
	MinBalance   *big.Int
	Operational  bool
	TotalQuizzes *big.Int
	TotalRewards *big.Int
	TotalFees    *big.Int
}

// =============================================================================
// Quiz Ledger Caller
// =============================================================================

// QuizCaller reads quiz state from the deployed ledger contract.
type QuizCaller struct {
	client  *Client
	address common.Address
	log     *logger.Logger
}

// NewQuizCaller creates a caller for the ledger at the given address.
func NewQuizCaller(client *Client, address common.Address, log *logger.Logger) *QuizCaller {
	if log == nil {
		log = logger.NewDefault("quiz-ledger")
	}
	return &QuizCaller{client: client, address: address, log: log}
}

// Address returns the ledger contract address.
func (q *QuizCaller) Address() common.Address {
	return q.address
}

// GetQuizSession reads a session record from the ledger.
func (q *QuizCaller) GetQuizSession(ctx context.Context, sessionID *big.Int) (*QuizSession, error) {
	data, err := EncodeCall(QuizLedgerABI, "getQuizSession", sessionID)
	if err != nil {
		return nil, err
	}

	out, err := q.client.CallContract(ctx, q.address, data)
	if err != nil {
		return nil, fmt.Errorf("getQuizSession: %w", err)
	}

	values, err := QuizLedgerABI.Unpack("getQuizSession", out)
	if err != nil {
		return nil, fmt.Errorf("decode getQuizSession: %w", err)
	}
	return parseQuizSession(values)
}

// GetUserInfo reads per-user quiz limits from the ledger.
func (q *QuizCaller) GetUserInfo(ctx context.Context, user common.Address) (*UserInfo, error) {
	data, err := EncodeCall(QuizLedgerABI, "getUserInfo", user)
	if err != nil {
		return nil, err
	}

	out, err := q.client.CallContract(ctx, q.address, data)
	if err != nil {
		return nil, fmt.Errorf("getUserInfo: %w", err)
	}

	values, err := QuizLedgerABI.Unpack("getUserInfo", out)
	if err != nil {
		return nil, fmt.Errorf("decode getUserInfo: %w", err)
	}
	return parseUserInfo(values)
}

// GetContractStats reads per-token operational state from the ledger.
func (q *QuizCaller) GetContractStats(ctx context.Context, token common.Address) (*ContractStats, error) {
	data, err := EncodeCall(QuizLedgerABI, "getContractStats", token)
	if err != nil {
		return nil, err
	}

	out, err := q.client.CallContract(ctx, q.address, data)
	if err != nil {
		return nil, fmt.Errorf("getContractStats: %w", err)
	}

	values, err := QuizLedgerABI.Unpack("getContractStats", out)
	if err != nil {
		return nil, fmt.Errorf("decode getContractStats: %w", err)
	}
	return parseContractStats(values)
}

// =============================================================================
// Output Parsers
// =============================================================================

func parseQuizSession(values []interface{}) (*QuizSession, error) {
	if len(values) != 9 {
		return nil, fmt.Errorf("getQuizSession: expected 9 values, got %d", len(values))
	}

	session := &QuizSession{}
	var ok bool
	if session.Owner, ok = values[0].(common.Address); !ok {
		return nil, fmt.Errorf("getQuizSession: owner is not an address")
	}
	if session.Token, ok = values[1].(common.Address); !ok {
		return nil, fmt.Errorf("getQuizSession: token is not an address")
	}
	if session.StartTime, ok = values[2].(*big.Int); !ok {
		return nil, fmt.Errorf("getQuizSession: startTime is not uint256")
	}
	if session.ExpiryTime, ok = values[3].(*big.Int); !ok {
		return nil, fmt.Errorf("getQuizSession: expiryTime is not uint256")
	}
	if session.Active, ok = values[4].(bool); !ok {
		return nil, fmt.Errorf("getQuizSession: active is not bool")
	}
	if session.Claimed, ok = values[5].(bool); !ok {
		return nil, fmt.Errorf("getQuizSession: claimed is not bool")
	}
	if session.Score, ok = values[6].(*big.Int); !ok {
		return nil, fmt.Errorf("getQuizSession: score is not uint256")
	}
	if session.Reward, ok = values[7].(*big.Int); !ok {
		return nil, fmt.Errorf("getQuizSession: reward is not uint256")
	}
	if session.TimeRemaining, ok = values[8].(*big.Int); !ok {
		return nil, fmt.Errorf("getQuizSession: timeRemaining is not uint256")
	}
	return session, nil
}

func parseUserInfo(values []interface{}) (*UserInfo, error) {
	if len(values) != 5 {
		return nil, fmt.Errorf("getUserInfo: expected 5 values, got %d", len(values))
	}

	info := &UserInfo{}
	var ok bool
	if info.DailyCount, ok = values[0].(*big.Int); !ok {
		return nil, fmt.Errorf("getUserInfo: dailyCount is not uint256")
	}
	if info.LastQuizTime, ok = values[1].(*big.Int); !ok {
		return nil, fmt.Errorf("getUserInfo: lastQuizTime is not uint256")
	}
	if info.NextQuizTime, ok = values[2].(*big.Int); !ok {
		return nil, fmt.Errorf("getUserInfo: nextQuizTime is not uint256")
	}
	if info.WonToday, ok = values[3].(*big.Int); !ok {
		return nil, fmt.Errorf("getUserInfo: wonToday is not uint256")
	}
	if info.CanQuiz, ok = values[4].(bool); !ok {
		return nil, fmt.Errorf("getUserInfo: canQuiz is not bool")
	}
	return info, nil
}

func parseContractStats(values []interface{}) (*ContractStats, error) {
	if len(values) != 7 {
		return nil, fmt.Errorf("getContractStats: expected 7 values, got %d", len(values))
	}

	stats := &ContractStats{}
	var ok bool
	if stats.Balance, ok = values[0].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: balance is not uint256")
	}
	if stats.ActiveCount, ok = values[1].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: activeCount is not uint256")
	}
	if stats.MinBalance, ok = values[2].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: minBalance is not uint256")
	}
	if stats.Operational, ok = values[3].(bool); !ok {
		return nil, fmt.Errorf("getContractStats: operational is not bool")
	}
	if stats.TotalQuizzes, ok = values[4].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: totalQuizzes is not uint256")
	}
	if stats.TotalRewards, ok = values[5].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: totalRewards is not uint256")
	}
	if stats.TotalFees, ok = values[6].(*big.Int); !ok {
		return nil, fmt.Errorf("getContractStats: totalFees is not uint256")
	}
	return stats, nil
}

// =============================================================================
// Event Decoding
// =============================================================================

// DecodeSessionID extracts the session identifier from a start receipt. It
// scans the receipt's logs for the one emitted by the ledger's own address
// whose first indexed topic is non-zero. Absence is not an error; callers
// treat a missing identifier as a degraded success.
func DecodeSessionID(receipt *types.Receipt, ledger common.Address) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}
	for _, entry := range receipt.Logs {
		if entry == nil || entry.Address != ledger || len(entry.Topics) < 2 {
			continue
		}
		id := new(big.Int).SetBytes(entry.Topics[1].Bytes())
		if id.Sign() != 0 {
			return id, true
		}
	}
	return nil, false
}
