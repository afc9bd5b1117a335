package mcp

import "testing"

func TestDefaultClientCapabilitiesAdvertisesRootsOnly(t *testing.T) {
	caps := DefaultClientCapabilities()
	if caps.Roots == nil || !caps.Roots.ListChanged {
		t.Error("expected roots with listChanged advertised by default")
	}
	if caps.Sampling != nil {
		t.Error("expected no sampling capability by default")
	}
}

func TestWithSamplingOnlyAdvertisesNeverImplements(t *testing.T) {
	caps := DefaultClientCapabilities().WithSampling()
	if caps.Sampling == nil {
		t.Error("expected sampling capability to be present after WithSampling")
	}
}

func TestServerCapabilitiesPredicates(t *testing.T) {
	caps := ServerCapabilities{
		Tools:     &ToolsCapability{ListChanged: true},
		Resources: &ResourcesCapability{Subscribe: true},
	}
	if !caps.HasTools() || !caps.HasToolsListChanged() {
		t.Error("expected tools + listChanged")
	}
	if !caps.HasResources() || !caps.HasResourcesSubscribe() {
		t.Error("expected resources + subscribe")
	}
	if caps.HasPrompts() || caps.HasLogging() {
		t.Error("expected no prompts/logging capability")
	}
}

func TestRequiredCapabilitySatisfied(t *testing.T) {
	caps := ServerCapabilities{Tools: &ToolsCapability{}}
	if !RequireTools.Satisfied(caps) {
		t.Error("expected RequireTools satisfied")
	}
	if RequirePrompts.Satisfied(caps) {
		t.Error("expected RequirePrompts unsatisfied")
	}
}
