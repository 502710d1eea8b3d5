package planner_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coach/pkg/planner"
	"coach/pkg/protocol"
)

type fakeRunner struct {
	out  string
	err  error
	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("planner call without deadline")
	}
	return []byte(f.out), f.err
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		wantErr  bool
		headline string
		hud      string
	}{
		{
			name:     "whole output",
			out:      `{"overlay":{"level":"B","style_id":"strict","headline":"Back to it","human_line":"x"},"hud_text":"focus"}`,
			headline: "Back to it",
			hud:      "focus",
		},
		{
			name:     "pretty printed",
			out:      "{\n  \"overlay\": {\"headline\": \"Hi\"},\n  \"hud_text\": \"h\"\n}\n",
			headline: "Hi",
			hud:      "h",
		},
		{
			name:     "log noise then last json line",
			out:      "thinking...\n{\"hud_text\":\"old\"}\nmore noise\n{\"hud_text\":\"new\",\"overlay\":{\"headline\":\"Go\"}}\n\n",
			headline: "Go",
			hud:      "new",
		},
		{name: "no json", out: "sorry, I can't", wantErr: true},
		{name: "empty", out: "", wantErr: true},
		{name: "json array is not an object", out: `["a"]`, wantErr: true},
		{
			name: "non-object overlay dropped",
			out:  `{"overlay":"Be calm","hud_text":"h"}`,
			hud:  "h",
		},
		{
			name: "bad level dropped",
			out:  `{"overlay":{"level":"C","headline":"x"}}`,
		},
		{
			name:     "wrong typed text ignored",
			out:      `{"hud_text":42,"overlay":{"headline":"ok"}}`,
			headline: "ok",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := planner.ParseResponse([]byte(tt.out))
			if tt.wantErr {
				assert.ErrorIs(t, err, planner.ErrNoResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hud, resp.HUDText)
			if tt.headline == "" {
				assert.Nil(t, resp.Overlay)
				return
			}
			require.NotNil(t, resp.Overlay)
			assert.Equal(t, tt.headline, resp.Overlay.Headline)
		})
	}
}

func TestOverlayValidateDefaults(t *testing.T) {
	ov := planner.Overlay{Headline: "x"}
	require.NoError(t, ov.Validate())
	assert.Equal(t, protocol.LevelA, ov.Level)
	assert.Equal(t, protocol.StyleCalm, ov.StyleID)

	empty := planner.Overlay{Level: protocol.LevelB}
	assert.Error(t, empty.Validate())

	cmd := ov.Command()
	assert.Equal(t, "x", cmd.Headline)
}

func TestExecPlanner_BuildsCommandLine(t *testing.T) {
	fr := &fakeRunner{out: `{"speech_text":"Back to the harness."}`}
	p := planner.NewExecPlanner("", "", time.Second, nil)
	p.Runner = fr

	resp, err := p.Plan(context.Background(), planner.Request{
		Message: "hello",
		Files:   []string{"/a/now.json", "/a/goals.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Back to the harness.", resp.SpeechText)
	assert.Equal(t, "opencode", fr.name)
	assert.Equal(t, []string{"run", "--agent", "coach_plan", "-f", "/a/now.json", "-f", "/a/goals.json", "--", "hello"}, fr.args)
}

func TestExecPlanner_FailureIsNoResponse(t *testing.T) {
	p := planner.NewExecPlanner("opencode", "coach_plan", time.Second, nil)
	p.Runner = &fakeRunner{err: errors.New("exit status 1")}

	_, err := p.Plan(context.Background(), planner.Request{Message: "m"})
	assert.ErrorIs(t, err, planner.ErrNoResponse)
}

func TestEventPrompt(t *testing.T) {
	line := `{"type":"DRIFT_START","event_id":"e1"}`
	plain := planner.EventPrompt(line, false)
	assert.True(t, strings.HasPrefix(plain, "You are coach_plan."))
	assert.True(t, strings.HasSuffix(plain, "Event line: "+line))

	drift := planner.EventPrompt(line+"\n", true)
	assert.True(t, strings.HasPrefix(drift, "Force level B overlay for drift.\n"))
	assert.True(t, strings.HasSuffix(drift, line))
}

func TestResponseEmpty(t *testing.T) {
	var nilResp *planner.Response
	assert.True(t, nilResp.Empty())
	assert.True(t, (&planner.Response{HUDText: "  "}).Empty())
	assert.False(t, (&planner.Response{SpeechText: "go"}).Empty())
}
