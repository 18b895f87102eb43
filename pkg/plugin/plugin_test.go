package plugin

import (
	"errors"
	"net"
	"net/rpc"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	got  []Notification
	err  error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Notify(n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func rpcPair(t *testing.T, impl Notifier) *RPCClient {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("Plugin", &RPCServer{Impl: impl}))
	go server.ServeConn(serverConn)

	c := rpc.NewClient(clientConn)
	t.Cleanup(func() { c.Close() })

	raw, err := (&NotifierPlugin{}).Client(nil, c)
	require.NoError(t, err)
	return raw.(*RPCClient)
}

func TestRPCRoundTrip(t *testing.T) {
	impl := &recorder{name: "desktop"}
	c := rpcPair(t, impl)

	require.Equal(t, "desktop", c.Name())

	n := Notification{ID: "1", Account: "alice@example.org", From: "bob@example.org", Title: "Bob", Body: "hi", Timestamp: time.Unix(1714564800, 0).UTC()}
	require.NoError(t, c.Notify(n))
	require.Equal(t, []Notification{n}, impl.got)
}

func TestRPCForwardsErrors(t *testing.T) {
	c := rpcPair(t, &recorder{name: "broken", err: errors.New("no display")})

	err := c.Notify(Notification{ID: "1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no display")
}

func TestHostFansOut(t *testing.T) {
	h := NewHost("")
	a := &recorder{name: "a"}
	b := &recorder{name: "b", err: errors.New("unavailable")}
	h.add(&LoadedPlugin{Name: "a", Notifier: a})
	h.add(&LoadedPlugin{Name: "b", Notifier: b})
	require.Equal(t, []string{"a", "b"}, h.List())

	err := h.Notify(Notification{ID: "1", Body: "hi"})
	require.ErrorContains(t, err, "plugin b")
	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)

	h.Unload("b")
	require.NoError(t, h.Notify(Notification{ID: "2"}))
	require.Len(t, a.got, 2)

	h.UnloadAll()
	require.Empty(t, h.List())
}

func TestLoadAllReportsMissingPlugins(t *testing.T) {
	dir := t.TempDir()
	h := NewHost(dir)

	require.NoError(t, h.LoadAll(nil))

	err := h.LoadAll([]string{"missing"})
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, "plugin missing")
	require.Empty(t, h.List())
}
