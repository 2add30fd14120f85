package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindComment, ParseKind("comment"))
	assert.Equal(t, KindFavorite, ParseKind("favorite"))
	assert.Equal(t, KindFollow, ParseKind("follow"))
	assert.Equal(t, KindSystem, ParseKind("system"))

	assert.Equal(t, KindSystem, ParseKind(""))
	assert.Equal(t, KindSystem, ParseKind("shrug"))
}

func TestCountUnread(t *testing.T) {
	assert.Zero(t, CountUnread(nil))

	ns := []Notification{
		{ID: "1", Read: false},
		{ID: "2", Read: true},
		{ID: "3", Read: false},
	}
	assert.Equal(t, 2, CountUnread(ns))
}
