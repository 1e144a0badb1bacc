package rules

import (
	"os"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Rule maps a keyword set to the replies it may produce.
type Rule struct {
	Name      string   `yaml:"name,omitempty" json:"name,omitempty"`
	Keywords  []string `yaml:"keywords" json:"keywords" validate:"required,min=1,dive,notblank"`
	Responses []string `yaml:"responses" json:"responses" validate:"required,min=1,dive,notblank"`
}

// Table is the ordered rule list plus the default pool used when nothing matches.
type Table struct {
	Rules          []Rule   `yaml:"rules" json:"rules" validate:"required,min=1,dive"`
	Defaults       []string `yaml:"defaults" json:"defaults" validate:"required,min=1,dive,notblank"`
	VoiceNoteReply string   `yaml:"voiceNoteReply" json:"voiceNoteReply" validate:"required"`
}

// DefaultPrompt 是话题为空时用于生成开场白的输入。
const DefaultPrompt = "How are you feeling?"

// DefaultTable returns the built-in table. Rule order is match priority.
func DefaultTable() Table {
	return Table{
		Rules: []Rule{
			{
				Name:     "sadness",
				Keywords: []string{"sad", "unhappy", "crying", "depressed", "down", "lonely", "alone", "isolated"},
				Responses: []string{
					"It's completely okay to feel that way. Thank you for sharing that with me. Remember to be gentle with yourself.",
					"I hear that you're going through a tough time. Feelings are like clouds passing in the sky; this one will pass too. I'm here to listen.",
					"That sounds really difficult. Thank you for trusting me with this. Is there anything you'd like to talk about regarding this feeling?",
				},
			},
			{
				Name:     "stress",
				Keywords: []string{"stressed", "anxious", "worried", "overwhelmed", "pressure"},
				Responses: []string{
					"Stress and anxiety can be incredibly draining. Let's take a moment together. How about a slow, deep breath? In... and out. You're taking a positive step just by being here.",
					"It sounds like there's a lot on your mind. When we feel overwhelmed, even small acts of kindness to ourselves can make a difference. What's one small thing you could do for yourself right now?",
					"That feeling of pressure is very real. You're not alone in feeling it. Just talking about it is a great way to release some of that tension.",
				},
			},
			{
				Name:     "confusion",
				Keywords: []string{"confused", "lost", "don't know", "stuck", "uncertain"},
				Responses: []string{
					"It's alright to feel confused or lost sometimes. Life can be complicated, and you don't need to have all the answers right now.",
					"Feeling stuck is a difficult place to be. Sometimes just acknowledging it is the first step. It's okay to not know which way to go.",
					"Uncertainty can be uncomfortable. It's brave of you to sit with that feeling and talk about it.",
				},
			},
			{
				Name:     "emptiness",
				Keywords: []string{"bored", "empty", "nothing"},
				Responses: []string{
					"Boredom can sometimes be our mind's way of asking for rest or for something new. What's one thing you used to enjoy doing, even as a child?",
					"That feeling of emptiness can be uncomfortable. Sometimes it's a quiet space waiting to be filled with something gentle. Let's just acknowledge that it's there.",
				},
			},
			{
				Name:      "greeting",
				Keywords:  []string{"hello", "hi", "hey"},
				Responses: []string{"Hello there. I'm glad you're here. How are you feeling today?"},
			},
			{
				Name:      "thanks",
				Keywords:  []string{"thank you", "thanks"},
				Responses: []string{"You're very welcome. I'm always here if you need to talk."},
			},
			{
				Name:      "positive",
				Keywords:  []string{"good", "happy", "great", "better", "fine"},
				Responses: []string{"That's wonderful to hear. I'm glad you're having a good moment. What's bringing you that positive feeling?"},
			},
		},
		Defaults: []string{
			"Thank you for sharing that with me. Can you tell me more about it?",
			"I'm here to listen. This is a safe space to explore that feeling.",
			"That sounds important. I'm here for you.",
			"I understand. It takes courage to share what's on your mind.",
		},
		VoiceNoteReply: "Thank you for sharing your voice. It's good to hear you. I'm listening.",
	}
}

// Validate checks the table invariants: every rule has keywords and replies,
// and the default pool is never empty. Whitespace-only entries count as empty.
func (t Table) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return oops.In("rules").Wrapf(err, "failed to register validator")
	}
	if err := validate.Struct(t); err != nil {
		return oops.In("rules").Errorf("invalid rule table: %w", err)
	}
	return nil
}

// normalized returns a copy with lower-cased, trimmed keywords. Blank
// keywords are dropped because they would match every input.
func (t Table) normalized() Table {
	out := Table{
		Rules:          make([]Rule, 0, len(t.Rules)),
		Defaults:       append([]string(nil), t.Defaults...),
		VoiceNoteReply: t.VoiceNoteReply,
	}
	for _, rule := range t.Rules {
		keywords := pie.Filter(
			pie.Map(rule.Keywords, func(k string) string { return strings.ToLower(strings.TrimSpace(k)) }),
			func(k string) bool { return k != "" },
		)
		out.Rules = append(out.Rules, Rule{
			Name:      rule.Name,
			Keywords:  keywords,
			Responses: append([]string(nil), rule.Responses...),
		})
	}
	return out
}

// LoadTable reads a YAML rule table from path. A missing voiceNoteReply falls
// back to the built-in one.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, oops.In("rules").With("path", path).Errorf("failed to read rules file: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML rule table.
func ParseTable(data []byte) (Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return Table{}, oops.In("rules").Errorf("failed to parse rules YAML: %w", err)
	}

	if strings.TrimSpace(table.VoiceNoteReply) == "" {
		table.VoiceNoteReply = DefaultTable().VoiceNoteReply
	}

	if err := table.Validate(); err != nil {
		return Table{}, err
	}
	return table, nil
}
