package winres

import "testing"

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal dwords", DwordValue(1), DwordValue(1), true},
		{"different dwords", DwordValue(1), DwordValue(0), false},
		{"kind mismatch", DwordValue(1), QwordValue(1), false},
		{"equal strings", StringValue("x"), StringValue("x"), true},
		{"different strings", StringValue("x"), StringValue("y"), false},
		{"expand vs plain string", StringValue("x"), ExpandStringValue("x"), false},
		{"equal multi", MultiStringValue("a", "b"), MultiStringValue("a", "b"), true},
		{"multi order matters", MultiStringValue("a", "b"), MultiStringValue("b", "a"), false},
		{"equal binary", BinaryValue([]byte{1, 2}), BinaryValue([]byte{1, 2}), true},
		{"different binary", BinaryValue([]byte{1}), BinaryValue([]byte{2}), false},
		{"zero dword vs empty string kind", DwordValue(0), StringValue(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueRef_Canonical(t *testing.T) {
	a := ValueRef{Hive: HiveLocalMachine, Key: `SOFTWARE\Test`, Name: "Enabled"}
	b := ValueRef{Hive: HiveLocalMachine, Key: `software\test`, Name: "ENABLED"}

	if a.Canonical() != b.Canonical() {
		t.Error("canonical identity should be case-insensitive")
	}
}

func TestTaskState_Enabled(t *testing.T) {
	if !TaskReady.Enabled() {
		t.Error("Ready should count as enabled")
	}
	if !TaskRunning.Enabled() {
		t.Error("Running should count as enabled")
	}
	if TaskDisabled.Enabled() {
		t.Error("Disabled should not count as enabled")
	}
	if TaskNotFound.Enabled() {
		t.Error("NotFound should not count as enabled")
	}
}

func TestTaskRef_Path(t *testing.T) {
	tests := []struct {
		folder, name, want string
	}{
		{`\Microsoft\Windows\Application Experience`, "ProgramDataUpdater", `\Microsoft\Windows\Application Experience\ProgramDataUpdater`},
		{`\Microsoft\Windows\Autochk\`, "Proxy", `\Microsoft\Windows\Autochk\Proxy`},
		{``, "RootTask", `\RootTask`},
	}

	for _, tt := range tests {
		ref := TaskRef{Folder: tt.folder, Name: tt.name}
		if got := ref.Path(); got != tt.want {
			t.Errorf("Path(%q, %q) = %q, want %q", tt.folder, tt.name, got, tt.want)
		}
	}
}

func TestValidHive(t *testing.T) {
	if !ValidHive(HiveLocalMachine) {
		t.Error("HKLM should be valid")
	}
	if ValidHive("HKXX") {
		t.Error("HKXX should not be valid")
	}
}

func TestValidKind(t *testing.T) {
	for _, k := range []ValueKind{KindString, KindExpandString, KindMultiString, KindDword, KindQword, KindBinary} {
		if !ValidKind(k) {
			t.Errorf("%s should be valid", k)
		}
	}
	if ValidKind("blob") {
		t.Error("blob should not be valid")
	}
}
