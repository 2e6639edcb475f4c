package verification

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	src := []byte(`<?php
class Session {
    private $token;
    function login($user) {
        $hash = md5($user . $this->token);
        return file_get_contents('/tmp/' . $hash);
    }
    function logout() {
        fsockopen('example.com', 80);
        return true;
    }
}
`)
	got := Analyze(src)

	want := Summary{
		Lines:             13,
		Functions:         []string{"login", "logout"},
		Classes:           []string{"Session"},
		Variables:         []string{"hash", "this", "token", "user"},
		SecurityFunctions: []string{"md5"},
		FileOperations:    []string{"file_get_contents"},
		NetworkFunctions:  []string{"fsockopen"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeEmptySource(t *testing.T) {
	got := Analyze(nil)
	assert.Equal(t, 1, got.Lines)
	assert.Empty(t, got.Functions)
	assert.Empty(t, got.Classes)
	assert.Empty(t, got.Variables)
}

func TestAnalyzeVariableCap(t *testing.T) {
	var src []byte
	src = append(src, "<?php\n"...)
	for c := byte('a'); c <= 'z'; c++ {
		src = append(src, '$', c, c, ' ', '=', ' ', '1', ';', '\n')
	}
	got := Analyze(src)
	assert.Len(t, got.Variables, 20, "variable list is capped")
}
