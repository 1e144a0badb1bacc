package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/sakhi/backend/internal/model/persona"
)

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt creates the fixed instruction for a persona.
func (pm *PersonaPromptManager) BuildSystemPrompt(p persona.Persona) string {
	template, err := pm.GetPromptTemplate(p.ID)
	if err != nil {
		return pm.buildBasicSystemPrompt(p)
	}

	return fmt.Sprintf(`%s

Character:
- Name: %s
- Role: %s
- Tone: %s

Personality:
- %s

Conversation rules:
- %s`,
		template.SystemPrompt,
		p.Name,
		p.Title,
		p.Tone,
		strings.Join(template.PersonalityHints, "\n- "),
		strings.Join(template.ContextRules, "\n- "),
	)
}

// buildBasicSystemPrompt 用于没有模板的角色。
func (pm *PersonaPromptManager) buildBasicSystemPrompt(p persona.Persona) string {
	instruction := p.Instruction
	if instruction == "" {
		instruction = fmt.Sprintf("You are %s, %s.", p.Name, p.Title)
	}
	return fmt.Sprintf("%s\n\nKeep a %s tone and stay in character as %s.", instruction, p.Tone, p.Name)
}

func (pm *PersonaPromptManager) loadDefaultTemplates() {
	seed := persona.Seed()
	for _, p := range seed {
		if p.ID != persona.DefaultID {
			continue
		}
		pm.templates[p.ID] = &PromptTemplate{
			SystemPrompt: p.Instruction,
			PersonalityHints: []string{
				"Warm and unhurried, like a trusted friend who listens more than they speak",
				"Reflect the user's feeling back in plain words before offering anything else",
				"Suggest gentle grounding practices such as slow breathing when the user feels overwhelmed",
			},
			ContextRules: []string{
				"Reply in the user's language, in two to four short sentences",
				"Never diagnose, prescribe, or claim to be a therapist",
				"If the user is in danger, urge them to reach emergency services or a professional now",
				"When the user opens with a single feeling word, acknowledge it and invite them to say more",
			},
		}
	}
}
