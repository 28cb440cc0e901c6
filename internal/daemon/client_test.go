//go:build linux

package daemon

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestClientSendInvalidJSON(t *testing.T) {
	sink := &payloadSink{}
	l := startListener(t, sink.post)
	client := NewClient(l.Path())

	require.NoError(t, client.Send([]byte("not json at all")))
	require.NoError(t, client.Send([]byte(`{"message":"valid"}`)))

	require.Eventually(t, func() bool { return len(sink.messages()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{InvalidPayloadMessage, "valid"}, sink.messages())
}

func TestClientNotRunning(t *testing.T) {
	client := NewClient(shortSocketPath(t))

	assert.False(t, client.IsRunning())
	err := client.Send([]byte(`{}`))
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestClientStaleSocketFile(t *testing.T) {
	path := shortSocketPath(t)

	// A bound but non-listening socket is what a crashed daemon leaves behind.
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	defer unix.Close(fd)
	require.NoError(t, unix.Bind(fd, &unix.SockaddrUnix{Name: path}))

	err = NewClient(path).Send([]byte(`{}`))
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}

func TestGetDaemonPID(t *testing.T) {
	dir := t.TempDir()

	self := dir + "/self.pid"
	require.NoError(t, os.WriteFile(self, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600))
	assert.Equal(t, os.Getpid(), GetDaemonPID(self))

	garbage := dir + "/garbage.pid"
	require.NoError(t, os.WriteFile(garbage, []byte("nope"), 0600))
	assert.Equal(t, 0, GetDaemonPID(garbage))

	assert.Equal(t, 0, GetDaemonPID(dir+"/missing.pid"))
}

func TestStopDaemonNotRunning(t *testing.T) {
	err := StopDaemon(t.TempDir()+"/missing.pid", time.Second)
	assert.ErrorIs(t, err, ErrDaemonNotRunning)
}
