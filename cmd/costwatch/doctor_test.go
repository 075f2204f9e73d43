package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/common"
)

func goodLoader() *fakeLoader {
	return &fakeLoader{session: &common.Session{AccountID: "123456789012", Region: "eu-west-1"}}
}

func TestDoctor_Healthy(t *testing.T) {
	var buf bytes.Buffer
	result, err := runDoctor(context.Background(), testDeps(validEnv(), goodLoader()), &buf, "table")
	if err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if !result.OverallHealthy {
		t.Errorf("OverallHealthy = false; result %+v", result)
	}

	out := buf.String()
	for _, want := range []string{
		"Cost monitor: OK",
		"Resource cleanup: OK",
		"Cleanup mode: disabled",
		"AWS (profile: ops):",
		"Account: 123456789012",
		"Region: OK (eu-west-1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got:\n%s", want, out)
		}
	}
}

func TestDoctor_MissingThresholds(t *testing.T) {
	env := validEnv()
	delete(env, "DAILY_COST_THRESHOLD")

	result, err := runDoctor(context.Background(), testDeps(env, goodLoader()), &bytes.Buffer{}, "table")
	if err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if result.Config.CostValid {
		t.Error("CostValid = true; want false")
	}
	if !result.Config.CleanupValid {
		t.Error("CleanupValid = false; want true")
	}
	if result.OverallHealthy {
		t.Error("OverallHealthy = true; want false")
	}
}

func TestDoctor_CredentialFailureJSON(t *testing.T) {
	loader := &fakeLoader{err: errors.New("no valid credential sources")}
	var buf bytes.Buffer

	if _, err := runDoctor(context.Background(), testDeps(validEnv(), loader), &buf, "json"); err != nil {
		t.Fatalf("runDoctor: %v", err)
	}

	var got DoctorResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.AWS.Credentials {
		t.Error("AWS.Credentials = true; want false")
	}
	if got.AWS.Error != "no valid credential sources" {
		t.Errorf("AWS.Error = %q", got.AWS.Error)
	}
	if got.OverallHealthy {
		t.Error("OverallHealthy = true; want false")
	}
}

func TestDoctor_UnloadableConfigSkipsAWS(t *testing.T) {
	env := validEnv()
	env["CPU_THRESHOLD"] = "five"
	loader := goodLoader()

	result, err := runDoctor(context.Background(), testDeps(env, loader), &bytes.Buffer{}, "table")
	if err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if result.Config.Loaded {
		t.Error("Config.Loaded = true; want false")
	}
	if loader.calls != 0 {
		t.Errorf("session loader called %d times; want 0", loader.calls)
	}
}

func TestDoctor_LiveMode(t *testing.T) {
	env := validEnv()
	env["CLEANUP_ENABLED"] = "true"
	env["DRY_RUN"] = "false"
	var buf bytes.Buffer

	if _, err := runDoctor(context.Background(), testDeps(env, goodLoader()), &buf, "table"); err != nil {
		t.Fatalf("runDoctor: %v", err)
	}
	if !strings.Contains(buf.String(), "Cleanup mode: LIVE") {
		t.Errorf("output missing live mode; got:\n%s", buf.String())
	}
}
