package solana

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeJSON(t *testing.T, s string) interface{} {
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestParseTransactionError(t *testing.T) {
	for _, tc := range []struct {
		raw         string
		key         TransactionErrorKey
		index       int
		instruction InstructionErrorKey
		custom      *CustomError
	}{
		{raw: `"BlockhashNotFound"`, key: TransactionErrorBlockhashNotFound},
		{raw: `{"DuplicateInstruction":3}`, key: "DuplicateInstruction"},
		{
			raw:         `{"InstructionError":[0,"MissingRequiredSignature"]}`,
			key:         TransactionErrorInstructionError,
			instruction: InstructionErrorMissingRequiredSignature,
		},
		{
			raw:         `{"InstructionError":[1,{"Custom":1}]}`,
			key:         TransactionErrorInstructionError,
			index:       1,
			instruction: InstructionErrorCustom,
			custom:      func() *CustomError { c := CustomError(1); return &c }(),
		},
		{
			raw:         `{"InstructionError":[1,{"BorshIoError":"x"}]}`,
			key:         TransactionErrorInstructionError,
			index:       1,
			instruction: "BorshIoError",
		},
	} {
		parsed, err := ParseTransactionError(decodeJSON(t, tc.raw))
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.key, parsed.ErrorKey(), tc.raw)

		if tc.instruction == "" {
			assert.Nil(t, parsed.InstructionError(), tc.raw)
			continue
		}

		require.NotNil(t, parsed.InstructionError(), tc.raw)
		assert.Equal(t, tc.index, parsed.InstructionError().Index, tc.raw)
		assert.Equal(t, tc.instruction, parsed.InstructionError().ErrorKey(), tc.raw)
		assert.Equal(t, tc.custom, parsed.InstructionError().CustomError(), tc.raw)

		encoded, err := parsed.JSONString()
		require.NoError(t, err)
		assert.JSONEq(t, tc.raw, encoded)
	}
}

func TestParseTransactionError_Invalid(t *testing.T) {
	parsed, err := ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	for _, raw := range []string{
		`{"a":1,"b":2}`,
		`{"InstructionError":"oops"}`,
		`{"InstructionError":[0]}`,
		`{"InstructionError":["x","InvalidArgument"]}`,
		`{"InstructionError":[0,{"Custom":1,"Other":2}]}`,
	} {
		_, err := ParseTransactionError(decodeJSON(t, raw))
		assert.Error(t, err, raw)
	}

	_, err = ParseTransactionError(12)
	assert.Error(t, err)
}

func TestNewInstructionTransactionError(t *testing.T) {
	for _, tc := range []struct {
		err     error
		json    string
		message string
	}{
		{
			err:     errors.New(string(InstructionErrorMissingRequiredSignature)),
			json:    `{"InstructionError":[1,"MissingRequiredSignature"]}`,
			message: "Error processing Instruction 1: MissingRequiredSignature",
		},
		{
			err:     CustomError(0x10),
			json:    `{"InstructionError":[1,{"Custom":16}]}`,
			message: "Error processing Instruction 1: custom program error: 10",
		},
	} {
		e := NewInstructionTransactionError(1, tc.err)
		assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
		assert.Equal(t, tc.message, e.Error())

		encoded, err := e.JSONString()
		require.NoError(t, err)
		assert.JSONEq(t, tc.json, encoded)

		parsed, err := ParseTransactionError(decodeJSON(t, encoded))
		require.NoError(t, err)
		assert.Equal(t, e.Error(), parsed.Error())
		assert.Equal(t, e.InstructionError().ErrorKey(), parsed.InstructionError().ErrorKey())
	}

	e := NewTransactionError(TransactionErrorDuplicateSignature)
	assert.Equal(t, "DuplicateSignature", e.Error())
	assert.Nil(t, e.InstructionError())
}

func TestParseRPCError(t *testing.T) {
	parsed, err := ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = ParseRPCError(&jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Blockhash not found",
		Data:    map[string]interface{}{"err": "BlockhashNotFound", "logs": []interface{}{}},
	})
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorBlockhashNotFound, parsed.ErrorKey())

	parsed, err = ParseRPCError(&jsonrpc.RPCError{Code: -32005, Data: map[string]interface{}{}})
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: "unexpected"})
	assert.Error(t, err)
}

func TestParseJSONNumber(t *testing.T) {
	for _, v := range []interface{}{"7", 7.0, json.Number("7"), 7} {
		n, err := parseJSONNumber(v)
		assert.NoError(t, err, "%T", v)
		assert.Equal(t, 7, n, "%T", v)
	}

	for _, v := range []interface{}{"seven", json.Number("7.5"), true} {
		_, err := parseJSONNumber(v)
		assert.Error(t, err, "%T", v)
	}
}
