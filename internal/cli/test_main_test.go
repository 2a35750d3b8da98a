package cli

import (
	"fmt"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "rebackup-home-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp home: %v\n", err)
		os.Exit(1)
	}

	oldHome, hadHome := os.LookupEnv("HOME")
	oldAppHome, hadAppHome := os.LookupEnv("REBACKUP_HOME")
	if err := os.Setenv("HOME", tempHome); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set HOME: %v\n", err)
		_ = os.RemoveAll(tempHome)
		os.Exit(1)
	}
	if err := os.Setenv("REBACKUP_HOME", tempHome); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set REBACKUP_HOME: %v\n", err)
		_ = os.RemoveAll(tempHome)
		os.Exit(1)
	}

	code := m.Run()

	if hadHome {
		_ = os.Setenv("HOME", oldHome)
	} else {
		_ = os.Unsetenv("HOME")
	}
	if hadAppHome {
		_ = os.Setenv("REBACKUP_HOME", oldAppHome)
	} else {
		_ = os.Unsetenv("REBACKUP_HOME")
	}
	_ = os.RemoveAll(tempHome)

	os.Exit(code)
}
