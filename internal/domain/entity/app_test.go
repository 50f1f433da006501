package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_NameFromPromptPrefix(t *testing.T) {
	app := NewApp("id-1", "owner-1", "做一个番茄钟", CodeGenTypeHTML)
	assert.Equal(t, "做一个番茄钟", app.Name)

	long := NewApp("id-2", "owner-1", "做一个带有排行榜和每日任务系统的番茄钟应用", CodeGenTypeHTML)
	assert.Equal(t, "做一个带有排行榜和每日任", long.Name)
}

func TestApp_GenDirName(t *testing.T) {
	app := NewApp("abc-123", "owner-1", "页面", CodeGenTypeMultiFile)
	assert.Equal(t, "multi_file_abc-123", app.GenDirName())
}

func TestApp_IsDeployed(t *testing.T) {
	app := NewApp("id-1", "owner-1", "页面", CodeGenTypeHTML)
	assert.False(t, app.IsDeployed())
	app.DeployKey = "aB3xYz"
	assert.True(t, app.IsDeployed())
}

func TestParseCodeGenType(t *testing.T) {
	for input, want := range map[string]CodeGenType{
		"html":        CodeGenTypeHTML,
		" HTML ":      CodeGenTypeHTML,
		"multi_file":  CodeGenTypeMultiFile,
		"Vue_Project": CodeGenTypeVueProject,
	} {
		got, err := ParseCodeGenType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseCodeGenType("react_project")
	assert.Error(t, err)
}

func TestCodeGenType_ValidAndUsesTools(t *testing.T) {
	assert.True(t, CodeGenTypeHTML.Valid())
	assert.False(t, CodeGenType("").Valid())
	assert.False(t, CodeGenType("bogus").Valid())

	assert.True(t, CodeGenTypeVueProject.UsesTools())
	assert.False(t, CodeGenTypeHTML.UsesTools())
	assert.False(t, CodeGenTypeMultiFile.UsesTools())
}

func TestUser_PasswordRoundtrip(t *testing.T) {
	u := NewUser(NewID(), "alice", "Alice")
	require.NoError(t, u.SetPassword("secret-password"))

	assert.True(t, u.CheckPassword("secret-password"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.NotContains(t, u.PasswordHash, "secret-password")
}

func TestUser_DefaultRole(t *testing.T) {
	u := NewUser(NewID(), "bob", "Bob")
	assert.Equal(t, UserRoleMember, u.Role)
	assert.False(t, u.IsAdmin())

	u.Role = UserRoleAdmin
	assert.True(t, u.IsAdmin())
}
