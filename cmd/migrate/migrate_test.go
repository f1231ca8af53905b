package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	version uint
	dirty   bool
	err     error
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.err
}

func (f *fakeMigrator) Down(steps int) error {
	f.calls = append(f.calls, "down")
	f.steps = steps
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, f.dirty, f.err
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name      string
		action    string
		steps     int
		wantCalls []string
		wantOut   string
		wantErr   bool
	}{
		{name: "up", action: "up", wantCalls: []string{"up"}},
		{name: "down two", action: "down", steps: 2, wantCalls: []string{"down"}},
		{name: "version", action: "version", wantCalls: []string{"version"}, wantOut: "version=2 dirty=false\n"},
		{name: "unknown action", action: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{version: 2}
			var out bytes.Buffer

			err := execute(m, tt.action, tt.steps, &out)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, m.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, m.calls)
			assert.Equal(t, tt.steps, m.steps)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestExecute_PropagatesErrors(t *testing.T) {
	m := &fakeMigrator{err: errors.New("dirty database version 2")}
	assert.EqualError(t, execute(m, "up", 0, &bytes.Buffer{}), "dirty database version 2")
}
