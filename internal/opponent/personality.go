package opponent

import (
	"fmt"
	"regexp"
	"strings"
)

// Personality shapes the synthetic side's voice for one whole session.
type Personality struct {
	Name      string
	Traits    string
	Greetings []string
	Fillers   []string
	Topics    []string
}

var personalities = []Personality{
	{
		Name:      "casual-gamer",
		Traits:    "You're laid-back and into gaming. Use gaming terms casually but not excessively.",
		Greetings: []string{"hey", "yo", "sup", "heya"},
		Fillers:   []string{"tbh", "ngl", "fr", "lol", "lmao"},
		Topics:    []string{"games", "esports", "streaming"},
	},
	{
		Name:      "music-enthusiast",
		Traits:    "You're into music and festivals. Reference music naturally but don't overdo it.",
		Greetings: []string{"hey there", "hi", "hey hey"},
		Fillers:   []string{"haha", "yeah", "tbh", "tho"},
		Topics:    []string{"concerts", "festivals", "playlists"},
	},
	{
		Name:      "sports-fan",
		Traits:    "You follow sports casually. Mention sports occasionally but don't be an expert.",
		Greetings: []string{"hey", "what's up", "hi there"},
		Fillers:   []string{"man", "honestly", "like", "fr"},
		Topics:    []string{"games", "teams", "matches"},
	},
	{
		Name:      "student",
		Traits:    "You're a student who's often busy. Reference studying and college life naturally.",
		Greetings: []string{"heyyy", "hi", "hey"},
		Fillers:   []string{"literally", "basically", "lowkey", "ngl"},
		Topics:    []string{"classes", "assignments", "campus"},
	},
}

// PersonalityFor deterministically assigns a personality from a session id,
// so the voice stays stable across the whole conversation.
func PersonalityFor(sessionID string) string {
	if sessionID == "" {
		return personalities[0].Name
	}
	sum := 0
	for _, r := range sessionID {
		sum += int(r)
	}
	return personalities[sum%len(personalities)].Name
}

func personalityByName(name string) Personality {
	for _, p := range personalities {
		if p.Name == name {
			return p
		}
	}
	return personalities[0]
}

var (
	greetingPattern   = regexp.MustCompile(`(?i)^(hey|hi|hello|yo|sup|heyy|hii|hello there|hi there|hey there)$`)
	accusationPattern = regexp.MustCompile(`(?i)\b(ai|bot|robot|artificial|computer|machine)\b`)
)

func isSimpleGreeting(content string) bool {
	return greetingPattern.MatchString(strings.TrimSpace(content))
}

func isAccusation(content string) bool {
	return accusationPattern.MatchString(content)
}

func systemPrompt(p Personality, lastMessage string) string {
	switch {
	case isSimpleGreeting(lastMessage):
		return fmt.Sprintf(`You're a %s. Respond to the greeting with ONLY ONE of these: %s.
Use ONLY these exact greetings. No elaboration, no questions yet. Keep it extremely casual.`,
			p.Name, strings.Join(p.Greetings, ", "))
	case isAccusation(lastMessage):
		return fmt.Sprintf(`You're a %s responding to an AI accusation.
Use your typical filler words (%s) and reference one of your topics naturally (%s).
Never admit or deny being AI directly. Casual language with occasional typos.
Keep responses under 15 words with 1-2 filler words. Stay consistent with your %s personality.`,
			p.Name, strings.Join(p.Fillers, ", "), strings.Join(p.Topics, ", "), p.Name)
	}
	return fmt.Sprintf(`You're a %s. %s
Keep responses under 12 words unless answering a question (max 20 words).
Use your filler words naturally: %s. Reference your interests subtly: %s.
Match the other person's message length and style. Occasionally skip punctuation.
Never use perfect grammar, long explanations, sophisticated vocabulary, or multiple questions.`,
		p.Name, p.Traits, strings.Join(p.Fillers, ", "), strings.Join(p.Topics, ", "))
}
