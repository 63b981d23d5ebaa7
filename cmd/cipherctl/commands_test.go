package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"

	"cipherlab/internal/crypto"
)

const (
	fipsKey = "000102030405060708090a0b0c0d0e0f"
	fipsPT  = "00112233445566778899aabbccddeeff"
	fipsCT  = "69c4e0d86a7b0430d8cdb78070b4c55a"
)

// runApp runs cipherctl with args and returns what it printed to stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()

	runErr := newApp().Run(append([]string{"cipherctl"}, args...))
	w.Close()
	out := <-done
	r.Close()

	return string(out), runErr
}

func TestEngineFor(t *testing.T) {
	e, err := engineFor("aes128", 10)
	require.NoError(t, err)
	require.Equal(t, "AES-128", e.Params().Name)

	e, err = engineFor("AES", 4)
	require.NoError(t, err)
	require.Equal(t, "AES-128-r4", e.Params().Name)

	// The round setting only applies to AES.
	e, err = engineFor("lea-192", 4)
	require.NoError(t, err)
	require.Equal(t, "LEA", e.Params().Name)

	_, err = engineFor("aes", 0)
	require.ErrorIs(t, err, crypto.ErrInvalidRoundCount)

	_, err = engineFor("des", 10)
	require.ErrorIs(t, err, crypto.ErrUnknownCipher)
}

func TestKeyBitsFromName(t *testing.T) {
	cases := map[string]int{
		"lea-256":    256,
		"piccolo128": 128,
		"present80":  80,
		"lea":        0,
		"":           0,
	}
	for name, want := range cases {
		require.Equal(t, want, keyBitsFromName(name), name)
	}
}

func TestEncryptDecryptCommands(t *testing.T) {
	out, err := runApp(t, "encrypt", "--cipher", "aes128", "--key", fipsKey,
		fipsPT)
	require.NoError(t, err)
	require.Equal(t, fipsCT, strings.TrimSpace(out))

	out, err = runApp(t, "decrypt", "-c", "aes", "-k", fipsKey, fipsCT)
	require.NoError(t, err)
	require.Equal(t, fipsPT, strings.TrimSpace(out))
}

func TestEncryptCommandErrors(t *testing.T) {
	_, err := runApp(t, "encrypt", "--cipher", "aes", "--key", fipsKey,
		"0011")
	require.ErrorIs(t, err, crypto.ErrInvalidBlockWidth)

	_, err = runApp(t, "encrypt", "--cipher", "aes", "--key", "0011", fipsPT)
	require.ErrorIs(t, err, crypto.ErrInvalidKeyWidth)

	_, err = runApp(t, "encrypt", "--cipher", "rot13", "--key", fipsKey,
		fipsPT)
	require.ErrorIs(t, err, crypto.ErrUnknownCipher)

	_, err = runApp(t, "encrypt", "--cipher", "aes", fipsPT)
	require.Error(t, err)

	_, err = runApp(t, "encrypt", "--cipher", "aes", "--key", fipsKey)
	require.ErrorIs(t, err, errMissingArg)

	_, err = runApp(t, "--rounds", "11", "encrypt", "--cipher", "aes",
		"--key", fipsKey, fipsPT)
	require.Error(t, err)
}

func TestPassphraseKeySizes(t *testing.T) {
	for _, tc := range []struct {
		args []string
		bits int
	}{
		{[]string{"--cipher", "lea"}, 128},
		{[]string{"--cipher", "lea-256"}, 256},
		{[]string{"--cipher", "lea", "--keybits", "192"}, 192},
		{[]string{"--cipher", "piccolo"}, 80},

		// A suffix the cipher does not offer falls back to its
		// smallest key.
		{[]string{"--cipher", "lea-100"}, 128},
	} {
		args := append([]string{"schedule", "--passphrase", "hunter2"},
			tc.args...)
		out, err := runApp(t, args...)
		require.NoError(t, err)

		var resp scheduleResp
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Contains(t, resp.Cipher, "-"+strconv.Itoa(tc.bits),
			tc.args)
	}
}

func TestPassphraseRejectsUnsupportedKeyBits(t *testing.T) {
	for _, args := range [][]string{
		{"--cipher", "lea", "--keybits", "100"},
		{"--cipher", "piccolo", "--keybits", "256"},
		{"--cipher", "lea-256", "--keybits", "64"},
	} {
		args = append([]string{"schedule", "--passphrase", "hunter2"},
			args...)
		_, err := runApp(t, args...)
		require.ErrorIs(t, err, crypto.ErrInvalidKeyWidth, args)
	}
}

func TestEngineForWarnsOnIgnoredRounds(t *testing.T) {
	var buf bytes.Buffer
	logger := btclog.NewBackend(&buf).Logger("CTL")
	logger.SetLevel(btclog.LevelWarn)

	saved := ctlLog
	ctlLog = logger
	t.Cleanup(func() { ctlLog = saved })

	e, err := engineFor("piccolo", 4)
	require.NoError(t, err)
	require.Equal(t, "Piccolo", e.Params().Name)
	require.Contains(t, buf.String(), "Ignoring --rounds 4")

	buf.Reset()
	_, err = engineFor("present", crypto.AESRounds)
	require.NoError(t, err)
	require.Empty(t, buf.String())
}

func TestScheduleCommand(t *testing.T) {
	out, err := runApp(t, "--rounds", "2", "schedule", "--cipher", "aes",
		"--key", "2b7e151628aed2a6abf7158809cf4f3c")
	require.NoError(t, err)

	var resp scheduleResp
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "AES-128-r2", resp.Cipher)
	require.Equal(t, 2, resp.Rounds)
	require.Equal(t, []string{
		"2b7e151628aed2a6abf7158809cf4f3c",
		"a0fafe1788542cb123a339392a6c7605",
		"f2c295f27a96b9435935807a7359f67f",
	}, resp.RoundKeys)
	require.Empty(t, resp.Whitening)

	out, err = runApp(t, "schedule", "--cipher", "piccolo", "--key",
		"00112233445566778899")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.RoundKeys, 25)
	require.Len(t, resp.Whitening, 4)
}

func TestTraceCommand(t *testing.T) {
	out, err := runApp(t, "trace", "--cipher", "aes", "--key", fipsKey,
		fipsPT)
	require.NoError(t, err)

	var resp []roundResp
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp, 11)
	require.Equal(t, 0, resp[0].Round)
	require.Equal(t, fipsCT, resp[10].State)

	_, err = runApp(t, "trace", "--cipher", "aes", "--key", fipsKey, "00")
	require.ErrorIs(t, err, crypto.ErrInvalidBlockWidth)
}

func TestVerifyCommand(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.json")

	out, err := runApp(t, "--workers", "2", "verify", "--report", report)
	require.NoError(t, err)
	require.Contains(t, out, "0 failed")
	require.FileExists(t, report)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"suites": [{
		"name": "broken",
		"cipher": "aes128",
		"vectors": [{
			"name": "wrong",
			"key": "`+fipsKey+`",
			"plaintext": "`+fipsPT+`",
			"ciphertext": "00000000000000000000000000000000"
		}]
	}]}`), 0o644))

	out, err = runApp(t, "verify", "--vectors", bad)
	require.Error(t, err)
	require.Contains(t, out, "FAIL broken/wrong")
}

func TestAvalancheCommand(t *testing.T) {
	img := filepath.Join(t.TempDir(), "aes.tga")

	out, err := runApp(t, "--samples", "32", "avalanche", "--cipher", "aes",
		"--key", fipsKey, "--out", img, "--scale", "1")
	require.NoError(t, err)

	var resp avalancheResp
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "AES-128", resp.Cipher)
	require.Equal(t, 32, resp.Samples)
	require.Equal(t, img, resp.Image)
	require.FileExists(t, img)

	_, err = runApp(t, "avalanche", "--cipher", "aes", "--key", fipsKey,
		"--out", filepath.Join(t.TempDir(), "aes.png"))
	require.Error(t, err)
}
