package content

import (
	"fmt"
	"strings"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
)

var defaultPrompts = map[domainPost.Type]string{
	domainPost.TypeInformative: "Create an informative social media post about pet grooming tips, pet care advice, or the benefits of professional grooming services. Make it engaging and helpful for pet owners.",
	domainPost.TypeFunFact:     "Share a fun and interesting fact about pets, dogs, cats, or grooming. Make it entertaining and shareable.",
	domainPost.TypePromotional: "Create a promotional post encouraging customers to book a grooming appointment. Include a call-to-action and mention any special benefits of choosing our service.",
}

// UserPrompt returns the business custom prompt for t, or the default one.
func UserPrompt(b domainBusiness.Business, t domainPost.Type) string {
	var custom string
	switch t {
	case domainPost.TypeInformative:
		custom = b.CustomPromptInformative
	case domainPost.TypeFunFact:
		custom = b.CustomPromptFunFact
	case domainPost.TypePromotional:
		custom = b.CustomPromptPromotional
	}
	if strings.TrimSpace(custom) != "" {
		return custom
	}
	return defaultPrompts[t]
}

// SystemPrompt describes the business to the text model.
func SystemPrompt(b domainBusiness.Business) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a social media content creator for %s, a pet grooming business.", b.BusinessName)
	if b.Address != "" {
		fmt.Fprintf(&sb, " Located at %s.", b.Address)
	}
	if b.Phone != "" {
		fmt.Fprintf(&sb, " Phone: %s.", b.Phone)
	}
	if b.Website != "" {
		fmt.Fprintf(&sb, " Website: %s.", b.Website)
	}
	sb.WriteString(" Write engaging, friendly Facebook posts that are 2-3 sentences long. Use emojis sparingly. Do not use hashtags excessively (max 2-3).")
	return sb.String()
}

// ImagePrompt builds the image prompt from the generated text.
func ImagePrompt(t domainPost.Type, text string) string {
	subject := text
	if len(subject) > 300 {
		subject = subject[:300]
	}
	return fmt.Sprintf("A professional, high-quality photo for a pet grooming business social media post (%s). Cute, well-groomed pets in a bright, clean grooming salon. No text in the image. Theme: %s",
		strings.ReplaceAll(string(t), "_", " "), subject)
}
