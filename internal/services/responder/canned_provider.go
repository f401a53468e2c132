package responder

import (
	"context"
	"strings"
	"time"
)

// CannedProvider answers with fixed dermatology guidance routed on keywords.
// It is the default provider when no API key is configured and is the
// reference behavior the contract tests pin down. An optional delay imitates
// a remote service; zero keeps it deterministic for tests.
type CannedProvider struct {
	Delay time.Duration
}

func NewCannedProvider() *CannedProvider {
	return &CannedProvider{}
}

func (p *CannedProvider) Reply(ctx context.Context, input Input) (string, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if input.Kind == InputImage {
		return imageAnalysisReply, nil
	}

	lower := strings.ToLower(input.Text)
	switch {
	case containsAny(lower, "skin", "rash", "mole"):
		return skinConcernReply, nil
	case containsAny(lower, "upload", "image", "photo"):
		return uploadHelpReply, nil
	case containsAny(lower, "hello", "hi"):
		return greetingReply, nil
	default:
		return fallbackReply, nil
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

const skinConcernReply = `I understand you're asking about skin health. Based on your message, I can provide some general information. However, please remember that this is for educational purposes only and you should consult with a dermatologist for proper medical advice.

For skin concerns, I recommend:
- Taking clear, well-lit photos from multiple angles
- Noting any changes in size, color, or texture
- Monitoring symptoms like itching, pain, or bleeding
- Scheduling a consultation with a healthcare professional

Would you like to upload an image for analysis, or do you have specific questions about skin health?`

const uploadHelpReply = `To upload an image for analysis, please use the attachment option next to the message input. I can analyze images of skin conditions and provide general observations.

Please ensure your image is:
- Clear and well-lit
- Shows the area of concern clearly
- Taken from an appropriate distance

Remember, my analysis is for informational purposes only and should not replace professional medical evaluation.`

const greetingReply = `Hello! I'm SkinAI, your AI assistant for skin health analysis. I'm here to help you with questions about skin conditions and can analyze images you upload.

How can I assist you today? You can:
- Ask questions about skin health
- Upload images for analysis
- Get general guidance on skin care
- Learn about when to see a healthcare professional`

const fallbackReply = `Thank you for your question. I'm specialized in skin health analysis and dermatological guidance. While I can provide general information and analyze skin images, please remember that my responses are for educational purposes only.

For the most accurate diagnosis and treatment recommendations, always consult with a qualified healthcare professional or dermatologist.

Is there a specific skin concern you'd like to discuss, or would you like to upload an image for analysis?`

const imageAnalysisReply = `I've analyzed the uploaded image. Here's my preliminary assessment:

**Visual Analysis:**
- The image shows skin tissue that appears to have some variation in pigmentation
- I can observe the general structure and coloration patterns
- The area appears to be photographed under adequate lighting

**Important Medical Disclaimer:**
This AI analysis is for informational purposes only and cannot replace professional medical evaluation. I cannot provide definitive diagnoses.

**Recommendations:**
- Schedule a consultation with a dermatologist for proper evaluation
- Monitor any changes in size, color, shape, or texture
- Take note of any symptoms like itching, pain, or bleeding
- Consider getting regular skin checks if you have risk factors

**When to Seek Immediate Care:**
- Rapid changes in appearance
- Bleeding or ulceration
- Persistent itching or pain
- Any concerns about the appearance

Would you like general information about skin health monitoring or guidance on preparing for a dermatologist visit?`
