package storage

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveSaveAndOpen(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("payments-20260301.csv", []byte("Reference,Amount\n"))
	require.NoError(t, err)
	require.Equal(t, "payments-20260301.csv", name)

	r, err := archive.Open(name)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "Reference,Amount\n", string(data))
}

func TestArchiveRejectsPathTraversal(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("../escape.csv", []byte("x"))
	require.Error(t, err)

	_, err = archive.Open("nested/dir.csv")
	require.Error(t, err)
}

func TestArchiveCleanupOlderThan(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("old.csv", []byte("x"))
	require.NoError(t, err)

	deleted, err := archive.CleanupOlderThan(0)
	require.NoError(t, err)
	require.Equal(t, []string{"old.csv"}, deleted)

	_, err = archive.Open("old.csv")
	require.Error(t, err)
}

func TestURLSignerRoundTrip(t *testing.T) {
	signer := NewURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("payments-1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	name, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "payments-1.pdf", name)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestURLSignerExpired(t *testing.T) {
	signer := NewURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("payments-1.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestURLSignerTamperedToken(t *testing.T) {
	signer := NewURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("payments-1.pdf")
	require.NoError(t, err)

	_, _, err = signer.Parse(token + "x")
	require.Error(t, err)

	other := NewURLSigner("different", time.Hour)
	_, _, err = other.Parse(token)
	require.Error(t, err)
}
