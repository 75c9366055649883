package skills

import "testing"

func TestSelectForMessage_ExplicitMentionWins(t *testing.T) {
	all := []*Skill{
		{Name: "weather", Description: "look up current weather conditions"},
		{Name: "news", Description: "summarize recent news"},
	}

	selections, err := SelectForMessage(all, "use $weather for tomorrow")
	if err != nil {
		t.Fatalf("SelectForMessage() error = %v", err)
	}
	if len(selections) != 1 || selections[0].Skill.Name != "weather" {
		t.Fatalf("SelectForMessage() = %+v", selections)
	}
	if selections[0].Reason != reasonExplicitMention {
		t.Errorf("Reason = %q, want %q", selections[0].Reason, reasonExplicitMention)
	}
}

func TestSelectForMessage_KeywordMatch(t *testing.T) {
	all := []*Skill{
		{Name: "weather", Description: "look up current weather forecast conditions", Tags: []string{"weather", "forecast"}},
		{Name: "news", Description: "summarize recent news headlines", Tags: []string{"news"}},
	}

	selections, err := SelectForMessage(all, "what is the forecast like today")
	if err != nil {
		t.Fatalf("SelectForMessage() error = %v", err)
	}
	if len(selections) == 0 || selections[0].Skill.Name != "weather" {
		t.Fatalf("SelectForMessage() = %+v, want weather primary", selections)
	}
}

func TestSelectForMessage_ResolvesRequires(t *testing.T) {
	all := []*Skill{
		{Name: "deploy", Description: "deploy the application", Requires: []string{"build"}},
		{Name: "build", Description: "build the application"},
	}

	selections, err := SelectForMessage(all, "please $deploy this")
	if err != nil {
		t.Fatalf("SelectForMessage() error = %v", err)
	}
	names := map[string]bool{}
	for _, s := range selections {
		names[s.Skill.Name] = true
	}
	if !names["deploy"] || !names["build"] {
		t.Errorf("SelectForMessage() = %+v, want deploy+build", selections)
	}
}

func TestSelectForMessage_CycleFallsBackToPrimary(t *testing.T) {
	all := []*Skill{
		{Name: "a", Description: "skill a", Requires: []string{"b"}},
		{Name: "b", Description: "skill b", Requires: []string{"a"}},
	}

	selections, err := SelectForMessage(all, "$a please")
	var cycleErr *SkillCycleError
	if err == nil {
		t.Fatal("expected SkillCycleError")
	}
	if e, ok := err.(*SkillCycleError); ok {
		cycleErr = e
	} else {
		t.Fatalf("err type = %T, want *SkillCycleError", err)
	}
	_ = cycleErr
	if len(selections) != 1 || selections[0].Skill.Name != "a" {
		t.Errorf("selections = %+v, want primary alone", selections)
	}
}

func TestSelectForMessage_PipelineAddsActivations(t *testing.T) {
	all := []*Skill{
		{Name: "release", Description: "cut a release", Pipeline: []string{"build", "publish"}},
		{Name: "build", Description: "build step"},
		{Name: "publish", Description: "publish step"},
	}

	selections, err := SelectForMessage(all, "$release now")
	if err != nil {
		t.Fatalf("SelectForMessage() error = %v", err)
	}
	var sawBuild, sawPublish bool
	for _, s := range selections {
		if s.Skill.Name == "build" && s.Reason == reasonPipeline {
			sawBuild = true
		}
		if s.Skill.Name == "publish" && s.Reason == reasonPipeline {
			sawPublish = true
		}
	}
	if !sawBuild || !sawPublish {
		t.Errorf("selections = %+v, want pipeline steps included", selections)
	}
}

func TestSelectForMessage_NoMatchReturnsEmpty(t *testing.T) {
	all := []*Skill{{Name: "weather", Description: "meteorology"}}
	selections, err := SelectForMessage(all, "completely unrelated gibberish zzqx")
	if err != nil {
		t.Fatalf("SelectForMessage() error = %v", err)
	}
	if len(selections) != 0 {
		t.Errorf("selections = %+v, want empty", selections)
	}
}
