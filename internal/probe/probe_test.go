package probe_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"untiscal/internal/apperrors"
	"untiscal/internal/probe"
	"untiscal/internal/rpc"
	"untiscal/internal/timetable"
)

type scriptedCaller struct {
	password string
	methods  []string
}

func (c *scriptedCaller) Call(_ context.Context, method string, params any, result any) error {
	c.methods = append(c.methods, method)
	var out any
	switch method {
	case "authenticate":
		if p, _ := params.(map[string]any); p["password"] != c.password {
			return &rpc.Error{Code: apperrors.CodeInvalidCredentials, Message: "invalid"}
		}
		out = map[string]any{"sessionId": "abc"}
	case "getSchoolyears":
		out = []map[string]any{{"id": 1, "name": "2024/2025", "startDate": 20240901, "endDate": 20250831}}
	}
	if result == nil || out == nil {
		return nil
	}
	b, _ := json.Marshal(out)
	return json.Unmarshal(b, result)
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := probe.New("every now and then", func(context.Context) error { return nil })
	assert.Error(t, err)

	_, err = probe.New("@every 1m", nil)
	assert.Error(t, err)
}

func TestRun_RecordsStatus(t *testing.T) {
	fail := errors.New("upstream down")
	var next error
	p, err := probe.New("@every 1h", func(context.Context) error { return next })
	require.NoError(t, err)

	_, ok := p.Status()
	assert.False(t, ok)

	st := p.Run(context.Background())
	assert.True(t, st.OK)

	next = fail
	st = p.Run(context.Background())
	assert.False(t, st.OK)
	assert.Equal(t, "upstream down", st.Error)

	got, ok := p.Status()
	require.True(t, ok)
	assert.Equal(t, st, got)
}

func TestLoginCheck(t *testing.T) {
	caller := &scriptedCaller{password: "pw"}
	newSource := func() (*timetable.Source, error) { return timetable.New(caller), nil }

	require.NoError(t, probe.LoginCheck(newSource, "probe", "pw")(context.Background()))
	assert.Equal(t, []string{"authenticate", "getSchoolyears", "logout"}, caller.methods)

	caller.methods = nil
	err := probe.LoginCheck(newSource, "probe", "nope")(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, []string{"authenticate"}, caller.methods)
}

func TestStartStop(t *testing.T) {
	p, err := probe.New("@every 1h", func(context.Context) error { return nil })
	require.NoError(t, err)
	p.Start()
	p.Stop()
}
