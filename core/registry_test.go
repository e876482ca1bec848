package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionRegistryAddRemove(t *testing.T) {
	reg := NewSessionRegistry(2)
	s1 := NewSession(nil, -1)
	s2 := NewSession(nil, -1)
	s3 := NewSession(nil, -1)

	require.Equal(t, 0, reg.Add(s1))
	require.Equal(t, 1, reg.Add(s2))
	require.Equal(t, -1, reg.Add(s3), "registry at MaxClients must refuse a third slot")

	reg.Remove(s1)
	require.Equal(t, 0, reg.Add(s3), "freed slot must be reused")
}

func TestSessionRegistryBindIDRejectsDuplicate(t *testing.T) {
	reg := NewSessionRegistry(4)
	a := NewSession(nil, -1)
	b := NewSession(nil, -1)
	reg.Add(a)
	reg.Add(b)

	require.True(t, reg.BindID("alice", a))
	require.False(t, reg.BindID("alice", b), "a second session must not steal a bound id")
	require.Same(t, a, reg.FindByID("alice"))
}

func TestRoomRegistryCreateFindDestroy(t *testing.T) {
	reg := NewRoomRegistry(1)
	r, ok := reg.Create("lobby1", "alice")
	require.True(t, ok)
	require.NotNil(t, r)

	_, ok = reg.Create("lobby1", "bob")
	require.False(t, ok, "duplicate room name must be rejected")

	require.Same(t, r, reg.Find("lobby1"))

	reg.Destroy(r)
	require.Nil(t, reg.Find("lobby1"), "leave(create(name,x)); find(name) = none")

	r2, ok := reg.Create("lobby2", "carol")
	require.True(t, ok, "freed slot must be reusable")
	require.NotNil(t, r2)
}

func TestRoomRegistryListNonEmptyReportsSlotIndex(t *testing.T) {
	sessions := NewSessionRegistry(4)
	registerSession(t, sessions, "alice")

	reg := NewRoomRegistry(3)
	r, _ := reg.Create("lobby1", "alice")
	r.Lock()
	r.Join(sessions, "alice")
	r.Unlock()

	entries := reg.ListNonEmpty()
	require.Len(t, entries, 1)
	require.Equal(t, 0, entries[0].SlotIdx)
	require.Equal(t, "lobby1", entries[0].Name)
	require.Equal(t, 1, entries[0].Players)
}
