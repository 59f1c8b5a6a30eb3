package genx

import (
	"context"
	"slices"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func TestFormatOpenAISchema(t *testing.T) {
	type item struct {
		Content string `json:"content"`
		Note    string `json:"note,omitempty"`
	}
	type out struct {
		Title string `json:"title"`
		Items []item `json:"items"`
	}
	s, err := jsonschema.For[out](nil)
	if err != nil {
		t.Fatal(err)
	}
	got := FormatOpenAISchema(s.CloneSchemas())

	if got.AdditionalProperties == nil || got.AdditionalProperties.Not == nil {
		t.Errorf("additionalProperties should be false")
	}
	if !slices.Equal(got.Required, []string{"items", "title"}) {
		t.Errorf("Required = %v, want [items title]", got.Required)
	}
	elem := got.Properties["items"].Items
	if elem == nil {
		t.Fatal("items schema missing")
	}
	if !slices.Equal(elem.Required, []string{"content", "note"}) {
		t.Errorf("item Required = %v, want [content note]", elem.Required)
	}
	if !slices.Contains(elem.Properties["note"].Types, "null") {
		t.Errorf("optional note should be nullable: %+v", elem.Properties["note"])
	}
}

func TestFormatOpenAISchema_Nil(t *testing.T) {
	if FormatOpenAISchema(nil) != nil {
		t.Error("FormatOpenAISchema(nil) should be nil")
	}
}

func TestOpenAIGenerator_ChatCompletion(t *testing.T) {
	g := &OpenAIGenerator{Model: "gpt-4.1", Params: &ModelParams{Temperature: 0.5}}
	tool := MustNewFuncTool("record", "record it", func(_ context.Context, _ struct{}, _ testArg) (any, error) { return nil, nil })
	req := &Request{
		Instructions: "be brief",
		History: []Turn{
			SystemTurn("agenda"),
			UserTurn("hello"),
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "record", Arguments: `{}`}}},
			ToolResultTurn(ToolCall{ID: "c1", Name: "record"}, "ok"),
			AssistantTurn("done"),
		},
		Tools:  []Spec{tool.Spec()},
		Output: MustOutputOf[testArg]("arg", ""),
	}
	params, err := g.chatCompletion(req)
	if err != nil {
		t.Fatalf("chatCompletion error: %v", err)
	}
	if params.Model != "gpt-4.1" {
		t.Errorf("Model = %q", params.Model)
	}
	if len(params.Messages) != 6 {
		t.Fatalf("len(Messages) = %d, want 6", len(params.Messages))
	}
	if params.Messages[0].OfDeveloper == nil {
		t.Error("instructions should be a developer message")
	}
	if params.Messages[1].OfSystem == nil || params.Messages[2].OfUser == nil {
		t.Error("system and user turns not converted")
	}
	if a := params.Messages[3].OfAssistant; a == nil || len(a.ToolCalls) != 1 || a.ToolCalls[0].ID != "c1" {
		t.Errorf("assistant tool call turn = %+v", params.Messages[3])
	}
	if params.Messages[4].OfTool == nil {
		t.Error("tool turn not converted")
	}
	if len(params.Tools) != 1 || params.Tools[0].Function.Name != "record" {
		t.Errorf("Tools = %+v", params.Tools)
	}
	if params.ResponseFormat.OfJSONSchema == nil {
		t.Error("ResponseFormat should carry the output schema")
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.5 {
		t.Errorf("Temperature = %+v", params.Temperature)
	}
}

func TestOpenAIGenerator_SystemRole(t *testing.T) {
	g := &OpenAIGenerator{UseSystemRole: true}
	params, err := g.chatCompletion(&Request{Instructions: "x", History: []Turn{UserTurn("y")}})
	if err != nil {
		t.Fatal(err)
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("instructions should be a system message")
	}
}

func TestOpenAIGenerator_RejectsEmptyTurns(t *testing.T) {
	g := &OpenAIGenerator{}
	for _, turn := range []Turn{
		{Role: RoleUser},
		{Role: RoleAssistant},
		{Role: "narrator", Content: "x"},
	} {
		if _, err := g.chatCompletion(&Request{History: []Turn{turn}}); err == nil {
			t.Errorf("chatCompletion(%+v) should fail", turn)
		}
	}
}
