package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		in   string
		cmd  string
		args string
	}{
		{"", "", ""},
		{"help", "help", ""},
		{"NAME team room", "name", "team room"},
		{"permit  @alice", "permit", "@alice"},
	}
	for _, c := range cases {
		cmd, args := splitCommand(c.in)
		assert.Equal(t, c.cmd, cmd, c.in)
		assert.Equal(t, c.args, args, c.in)
	}
}
