package chain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEncodeCall(t *testing.T) {
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")

	data, err := EncodeCall(QuizLedgerABI, "startQuiz", token, big.NewInt(100))
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	// 4-byte selector plus two 32-byte words.
	if len(data) != 4+64 {
		t.Errorf("encoded length = %d, want 68", len(data))
	}
	if !bytes.Equal(data[:4], QuizLedgerABI.Methods["startQuiz"].ID) {
		t.Error("selector mismatch")
	}
}

func TestEncodeCall_MalformedArguments(t *testing.T) {
	if _, err := EncodeCall(QuizLedgerABI, "startQuiz", "not-an-address", big.NewInt(1)); err == nil {
		t.Error("string where address is expected must fail")
	}
	if _, err := EncodeCall(QuizLedgerABI, "startQuiz", common.Address{}); err == nil {
		t.Error("missing argument must fail")
	}
	if _, err := EncodeCall(QuizLedgerABI, "noSuchMethod"); err == nil {
		t.Error("unknown method must fail")
	}
}

func TestAttributionSuffixRoundTrip(t *testing.T) {
	consumer := ConsumerID("quizstake")
	caller := common.HexToAddress("0x1111111111111111111111111111111111111111")
	payload := []byte{0xde, 0xad, 0xbe, 0xef}

	data := AppendAttribution(payload, consumer, caller)
	if len(data) != len(payload)+AttributionSuffixLen {
		t.Fatalf("suffixed length = %d, want %d", len(data), len(payload)+AttributionSuffixLen)
	}
	if !bytes.Equal(data[:4], payload) {
		t.Error("payload prefix modified")
	}

	gotConsumer, gotCaller, ok := ParseAttribution(data)
	if !ok {
		t.Fatal("suffix not recognized")
	}
	if gotConsumer != consumer {
		t.Error("consumer identifier corrupted")
	}
	if gotCaller != caller {
		t.Errorf("caller = %s, want %s", gotCaller.Hex(), caller.Hex())
	}
}

func TestParseAttribution_Absent(t *testing.T) {
	if _, _, ok := ParseAttribution([]byte{0x01, 0x02}); ok {
		t.Error("short calldata parsed as suffixed")
	}

	// Long enough but without the marker.
	plain := make([]byte, AttributionSuffixLen+10)
	if _, _, ok := ParseAttribution(plain); ok {
		t.Error("unmarked calldata parsed as suffixed")
	}
}

func TestConsumerID_Deterministic(t *testing.T) {
	if ConsumerID("quizstake") != ConsumerID("quizstake") {
		t.Error("identifier not deterministic")
	}
	if ConsumerID("quizstake") == ConsumerID("other") {
		t.Error("distinct names collide")
	}
}
