package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	started := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	id, err := s.StartSession("/tmp/sessions/2026-03-14_13-00_session.md", started)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, s.SetTitle(id, "Project Timeline Planning"))
	require.NoError(t, s.SetDocumentPath(id, "/tmp/sessions/2026-03-14_13-00_Project_Timeline_Planning.md"))

	sessions, err := s.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, id, sessions[0].ID)
	require.Equal(t, "active", sessions[0].Status)
	require.Equal(t, "Project Timeline Planning", sessions[0].Title)
	require.Equal(t, started.Unix(), sessions[0].StartedAt.Unix())
	require.Nil(t, sessions[0].EndedAt)

	ended := started.Add(25 * time.Minute)
	require.NoError(t, s.EndSession(id, ended, 12))

	sessions, err = s.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "closed", sessions[0].Status)
	require.Equal(t, 12, sessions[0].UtteranceCount)
	require.NotNil(t, sessions[0].EndedAt)
	require.Equal(t, ended.Unix(), sessions[0].EndedAt.Unix())
}

func TestListSessionsOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.StartSession("/tmp/doc.md", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	sessions, err := s.ListSessions(2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, ids[2], sessions[0].ID)
	require.Equal(t, ids[1], sessions[1].ID)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state", "sessions.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.StartSession("/tmp/doc.md", time.Now())
	require.NoError(t, err)
}
