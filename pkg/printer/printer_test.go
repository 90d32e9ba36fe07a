package printer

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_TranscodesBlockGlyphsToCP437(t *testing.T) {
	doc, err := NewDocument(CodepageCP437)
	require.NoError(t, err)

	data, err := doc.Text("█▀▄ ok").Bytes()
	require.NoError(t, err)

	// ESC @, ESC t 0, then the text
	assert.Equal(t, []byte{ESC, '@', ESC, 't', 0}, data[:5])
	assert.Equal(t, []byte{0xDB, 0xDF, 0xDC, ' ', 'o', 'k', LF}, data[5:])
}

func TestDocument_ReplacesUnsupportedRunes(t *testing.T) {
	doc, err := NewDocument("")
	require.NoError(t, err)

	data, err := doc.Text("€").Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1A, LF}, data[5:])
}

func TestDocument_UTF8Passthrough(t *testing.T) {
	doc, err := NewDocument(CodepageUTF8)
	require.NoError(t, err)

	data, err := doc.Block("█\nline two\n").Bytes()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{ESC, '@'}, []byte("█\nline two\n")...), data)
}

func TestDocument_UnknownCodepage(t *testing.T) {
	_, err := NewDocument("cp1252")
	assert.Error(t, err)
}

func TestDocument_BoldAndCuts(t *testing.T) {
	doc, err := NewDocument(CodepageUTF8)
	require.NoError(t, err)

	data, err := doc.SetBold(true).Text("Shop").SetBold(false).FeedLines(2).Cut().Bytes()
	require.NoError(t, err)
	want := []byte{ESC, '@', ESC, 'E', 1, 'S', 'h', 'o', 'p', LF, ESC, 'E', 0, LF, LF, GS, 'V', 0x00}
	assert.Equal(t, want, data)

	doc, err = NewDocument(CodepageUTF8)
	require.NoError(t, err)
	data, err = doc.PartialCut().Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{GS, 'V', 0x01}, data[len(data)-3:])
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "", 0)
	require.NoError(t, err)
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig("usb", "", "", 0)
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("network", "", "", 0)
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("serial", "", "", 0)
	assert.Error(t, err)
}

func TestFilePrinter_AppendsJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.bin")
	p, err := NewPrinterFromConfig("file", path, "", 0)
	require.NoError(t, err)

	require.NoError(t, p.Print(context.Background(), []byte("one")))
	require.NoError(t, p.Print(context.Background(), []byte("two")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "onetwo", string(got))
}

func TestNetworkPrinter_SendsBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String(), time.Second)
	require.NoError(t, p.Print(context.Background(), []byte("receipt")))

	select {
	case data := <-received:
		assert.Equal(t, "receipt", string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("printer did not receive data")
	}
}

func TestNetworkPrinter_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	p := NewNetworkPrinter(addr, 200*time.Millisecond)
	assert.Error(t, p.Print(context.Background(), []byte("x")))
	assert.False(t, p.IsConnected())
}
