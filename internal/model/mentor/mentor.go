package mentor

import "net/url"

// Mentor captures the persona attributes of a simulated startup mentor.
// Records are handed out by value and never mutated after the catalog loads.
type Mentor struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Role        string   `json:"role" yaml:"role"`
	Description string   `json:"description" yaml:"description"` // 一句话的理念描述
	Personality string   `json:"personality" yaml:"personality"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Accent      string   `json:"accent,omitempty" yaml:"accent,omitempty"` // 主题色，十六进制
	Experience  string   `json:"experience" yaml:"experience"`             // 履历
	Expertise   []string `json:"expertise,omitempty" yaml:"expertise,omitempty"`
}

// Seed provides the built-in mentor directory.
func Seed() []Mentor {
	return []Mentor{
		{
			ID:          "elon",
			Name:        "Elon Musk",
			Role:        "CEO, Tesla & SpaceX",
			Description: "Expert in first-principles thinking and hard-engineering innovation.",
			Personality: "Physics-driven, extremely high risk tolerance, and focused on vertically integrated scale.",
			Image:       imageProxy("https://futureoflife.org/wp-content/uploads/2020/08/elon_musk_royal_society.jpg"),
			Accent:      "#1A73E8",
			Experience:  "Founder of PayPal, SpaceX, Tesla, Neuralink, and xAI. Master of manufacturing and AI hardware.",
			Expertise:   []string{"C++", "Python", "Rocketry", "Neural Nets"},
		},
		{
			ID:          "sundar",
			Name:        "Sundar Pichai",
			Role:        "CEO, Google & Alphabet",
			Description: "Master of global scale and the AI-first transition.",
			Personality: "Measured, collaborative, and focused on organized information accessibility for everyone.",
			Accent:      "#4285F4",
			Experience:  "Led Google Chrome and Android. Now spearheading the Gemini era and global search infrastructure.",
			Expertise:   []string{"Distributed Systems", "Cloud Computing", "AI Strategy"},
		},
		{
			ID:          "sam_altman",
			Name:        "Sam Altman",
			Role:        "CEO, OpenAI",
			Description: "Visionary behind AGI and exponential startup scaling.",
			Personality: "Strategically aggressive, fast-moving, and scale-obsessed builder.",
			Accent:      "#334155",
			Experience:  "Former President of Y Combinator. Co-founder of OpenAI. Expert in scaling power laws and AGI.",
			Expertise:   []string{"LLMs", "AGI Safety", "Venture Growth"},
		},
		{
			ID:          "bill_gates",
			Name:        "Bill Gates",
			Role:        "Co-founder, Microsoft",
			Description: "Pioneer of the PC era and global software standard architecture.",
			Personality: "Analytical, polymathic, and deeply systematic in approach to complex global systems.",
			Accent:      "#1E40AF",
			Experience:  "Dominated the PC software era. Now architecting global climate and public health solutions.",
			Expertise:   []string{"System Architecture", "Software Licensing", "BASIC"},
		},
		{
			ID:          "jeff_bezos",
			Name:        "Jeff Bezos",
			Role:        "Founder, Amazon",
			Description: "Master of customer obsession and long-term flywheel strategy.",
			Personality: "Operationally rigorous, data-driven, and focused on 'Day 1' philosophy.",
			Accent:      "#FF9900",
			Experience:  "Built Amazon and AWS. Invented the infrastructure for modern e-commerce and cloud computing.",
			Expertise:   []string{"Cloud Economics", "Logistics", "AWS"},
		},
		{
			ID:          "pavel_durov",
			Name:        "Pavel Durov",
			Role:        "CEO, Telegram",
			Description: "Privacy-first advocate and decentralized platform pioneer.",
			Personality: "Independent, defiant, and focused on secure, neutral, high-performance communication.",
			Accent:      "#0EA5E9",
			Experience:  "Founder of VK and Telegram. Expert in massive-scale messaging infrastructure and cryptography.",
			Expertise:   []string{"Cryptography", "C++", "Platform Neutrality"},
		},
	}
}

// imageProxy routes portraits through weserv so hotlink protection does not break them.
func imageProxy(raw string) string {
	return "https://images.weserv.nl/?url=" + url.QueryEscape(raw) + "&w=800&h=800&fit=cover&a=top"
}
