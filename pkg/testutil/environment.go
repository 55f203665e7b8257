package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/session"
)

// Env bundles a session driven by the simulator
type Env struct {
	Session   *session.Session
	Runner    *FakeRunner
	Simulator *Simulator
	// Dir is a scratch working directory for the test
	Dir string
}

// Settings returns tool settings pointing at stub jars in a temp dir
func Settings(t *testing.T) *config.Settings {
	t.Helper()
	jars := t.TempDir()
	s := &config.Settings{
		Tools: config.ToolSettings{Java: "java", Git: "git", Jadx: "jadx", Zipalign: "zipalign", Javac: "javac"},
		Jars: config.JarSettings{
			Dir:       jars,
			Smali:     "smali.jar",
			Baksmali:  "baksmali.jar",
			Apksigner: "apksigner.jar",
			Dx:        "dx.jar",
		},
		Signing: config.SigningSettings{Keystore: "debug.keystore", Password: "android"},
		Git:     config.GitSettings{CommitMessage: "First init project"},
	}
	for _, name := range []string{"smali.jar", "baksmali.jar", "apksigner.jar", "dx.jar", "debug.keystore"} {
		require.NoError(t, os.WriteFile(filepath.Join(jars, name), []byte(name), 0644))
	}
	return s
}

// NewEnv creates a simulator backed session cleaned up with the test
func NewEnv(t *testing.T) *Env {
	t.Helper()
	sim := &Simulator{Fail: map[string]string{}}
	fake := &FakeRunner{Handler: sim.Handle}

	sess := session.New(Settings(t), fake)
	sess.TempRoot = t.TempDir()
	t.Cleanup(func() { _ = sess.Close() })

	return &Env{Session: sess, Runner: fake, Simulator: sim, Dir: t.TempDir()}
}
