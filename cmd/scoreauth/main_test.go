package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("SCOREAUTH_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestLifecycleAgainstFake(t *testing.T) {
	out, err := runCLI(t, "-fake",
		"status",
		"route", "/(tabs)/index",
		"signup", "fan@example.com", "secret",
		"status",
		"route", "/(auth)/login",
		"update-profile", "name=Fan,status=online",
		"logout",
		"status",
	)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Equal(t, "signed out", string(lines[0]))
	assert.Equal(t, "redirect /(tabs)/index -> /(auth)", string(lines[1]))
	assert.Contains(t, string(lines[2]), "signed in as fan@example.com")
	assert.Contains(t, string(lines[2]), "role=viewer")
	assert.Equal(t, "redirect /(auth)/login -> /(tabs)/index", string(lines[3]))
	assert.Equal(t, "signed out", string(lines[4]))
}

func TestScorerSignupRoutesToScorerHome(t *testing.T) {
	out, err := runCLI(t, "-fake",
		"scorer-signup", "ref@example.com", "secret", "Ref", "5550100", "+1",
		"route", "/(tabs)",
		"metrics",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "redirect /(tabs) -> /(tabs)/scorer-home")
	assert.Contains(t, out, "scoreauth_signup_success_total 1")
	assert.Contains(t, out, "scoreauth_login_success_total 1")
}

func TestLoginFailureIsReported(t *testing.T) {
	_, err := runCLI(t, "-fake", "login", "nobody@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login:")
}

func TestParseCommands(t *testing.T) {
	cmds, err := parseCommands([]string{"login", "a@b.co", "pw", "status", "route", "/(auth)"})
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, []string{"a@b.co", "pw"}, cmds[0].args)
	assert.Equal(t, "route", cmds[2].name)

	_, err = parseCommands([]string{"login", "a@b.co"})
	assert.Error(t, err)

	_, err = parseCommands([]string{"teleport"})
	assert.Error(t, err)
}

func TestParseProfileUpdate(t *testing.T) {
	p, err := parseProfileUpdate("name=Ann,address=1 Main St,countryCode=+44")
	require.NoError(t, err)
	require.NotNil(t, p.Name)
	assert.Equal(t, "Ann", *p.Name)
	assert.Equal(t, "1 Main St", *p.Address)
	assert.Equal(t, "+44", *p.CountryCode)
	assert.Nil(t, p.Status)

	_, err = parseProfileUpdate("nickname=x")
	assert.Error(t, err)
	_, err = parseProfileUpdate("name")
	assert.Error(t, err)
}

func TestUsageErrors(t *testing.T) {
	_, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "status", "bogus")
	assert.ErrorIs(t, err, errUsage)
}
