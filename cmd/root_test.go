package cmd

import (
	"testing"
)

func TestRootCommandWiring(t *testing.T) {
	want := map[string]bool{
		"chat":          false,
		"resources":     false,
		"conversations": false,
		"version":       false,
	}
	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestResourcesSubcommands(t *testing.T) {
	subs := make(map[string]bool)
	for _, sub := range resourcesCmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"list", "delete"} {
		if !subs[name] {
			t.Errorf("resources subcommand %q not registered", name)
		}
	}
}

func TestOwnerIDNeverEmpty(t *testing.T) {
	if ownerID() == "" {
		t.Error("ownerID() returned empty string")
	}
}

func TestChatNewFlag(t *testing.T) {
	if chatCmd.Flags().Lookup("new") == nil {
		t.Error("chat command is missing the --new flag")
	}
	// The root command defaults to chat, so it must accept --new too.
	if rootCmd.Flags().Lookup("new") == nil {
		t.Error("root command is missing the --new flag")
	}
}
