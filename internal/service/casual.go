package service

import (
	"hash/fnv"
	"strings"
)

// Casual exchanges are answered from fixed templates without touching the
// retrieval pipeline. The reply choice hashes the message so the same
// greeting always gets the same answer.

var casualGreetings = map[string]bool{
	"hi": true, "hello": true, "hey": true, "hii": true, "hiii": true,
	"good morning": true, "good afternoon": true, "good evening": true,
	"namaste": true, "greetings": true,
}

var casualThanks = map[string]bool{
	"thanks": true, "thank you": true, "thankyou": true, "thx": true, "ty": true,
}

var casualFarewells = map[string]bool{
	"bye": true, "goodbye": true, "see you": true, "see ya": true, "ok bye": true,
}

var casualAcks = map[string]bool{
	"ok": true, "okay": true, "cool": true, "great": true, "nice": true,
	"hmm": true, "oh": true, "yes": true, "no": true, "sure": true,
}

var greetingReplies = []string{
	"Hello! I'm Alex, your MBA counselor. Tell me what you're looking for in a program - a specialization, a budget, or what matters most to you - and I'll find options that fit.",
	"Hi there! I help students find the right MBA program. What are you looking for - a particular specialization like Finance or Marketing, or a budget range in mind?",
	"Hey! Great to meet you. I can recommend MBA programs based on your goals. What would you like to focus on?",
}

var thanksReplies = []string{
	"You're very welcome! If you want to explore more programs or refine your preferences, just let me know.",
	"Happy to help! Feel free to ask about specializations, fees or anything else about the programs.",
}

var farewellReplies = []string{
	"Good luck with your MBA journey! Come back anytime you want to compare programs.",
	"All the best! I'm here whenever you want to look at more options.",
}

var ackReplies = []string{
	"Got it! Whenever you're ready, tell me more about what you want from an MBA program and I'll pull up matching options.",
	"Alright! If you share a specialization or budget, I can show you programs that fit.",
}

// isCasualMessage reports whether the message is small talk rather than a
// program query. Only short messages qualify so a greeting followed by a
// real question still reaches the pipeline.
func isCasualMessage(message string) bool {
	normalized := normalizeCasual(message)
	if normalized == "" {
		return true
	}
	if len(strings.Fields(normalized)) > 3 {
		return false
	}
	return casualGreetings[normalized] || casualThanks[normalized] ||
		casualFarewells[normalized] || casualAcks[normalized]
}

// casualReply picks the canned answer for a casual message.
func casualReply(message string) string {
	normalized := normalizeCasual(message)

	switch {
	case casualThanks[normalized]:
		return pickReply(thanksReplies, normalized)
	case casualFarewells[normalized]:
		return pickReply(farewellReplies, normalized)
	case casualAcks[normalized]:
		return pickReply(ackReplies, normalized)
	default:
		return pickReply(greetingReplies, normalized)
	}
}

func normalizeCasual(message string) string {
	normalized := strings.ToLower(strings.TrimSpace(message))
	return strings.Trim(normalized, "!.?, ")
}

func pickReply(replies []string, key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return replies[h.Sum32()%uint32(len(replies))]
}
