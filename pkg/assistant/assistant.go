package assistant

import "strings"

// Rule answers a message when Match accepts it. Match receives the message
// already lower-cased.
type Rule struct {
	Name     string
	Match    func(msg string) bool
	Response string
}

func containsAny(subs ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

const (
	costResponse = "I can help you estimate service costs! Please specify the service type and vehicle model. For example, 'Oil change for Honda Civic' or 'Brake inspection for Toyota Camry'."

	whenResponse = "To determine when your vehicle needs service, I'll need to know:\n1. Vehicle model and registration\n2. Current mileage\n3. Last service date and type\n\nI can then provide personalized maintenance recommendations based on your service history."

	oilChangeResponse = "Oil changes are typically needed every 5,000-7,500 miles or 6 months, whichever comes first. The cost varies by vehicle:\n• Compact cars: $50-60\n• Sedans: $60-70\n• SUVs: $70-80\n• Trucks: $80-90\n• Luxury vehicles: $100+"

	brakeResponse = "Brake inspections are recommended every 12 months or 15,000 miles. Signs you may need brake service:\n• Squealing or grinding noises\n• Vibration when braking\n• Brake pedal feels soft or spongy\n• Dashboard warning light\n\nCosts typically range from $80-180 depending on your vehicle type."

	tireResponse = "Tire rotation should be done every 6 months or 7,500 miles to ensure even wear. This typically costs $30-60. Also check your tire pressure monthly and inspect for wear patterns, cracks, or punctures."

	scheduleResponse = "To schedule a service appointment, I recommend:\n1. Check your service recommendations first\n2. Choose a convenient date\n3. Get a cost estimate\n4. Book through your preferred workshop\n\nWould you like me to generate recommendations for your vehicle?"

	greetingResponse = "Hello! I'm your ASSIST virtual assistant. I can help you with:\n\n• Service cost estimates\n• Maintenance scheduling recommendations\n• Service interval guidance\n• Vehicle care tips\n• Appointment planning\n\nWhat would you like assistance with today?"

	// FallbackResponse is returned when no rule matches
	FallbackResponse = "I'm here to help with vehicle service questions! You can ask me about:\n• Service costs and estimates\n• When your vehicle needs maintenance\n• Service intervals and recommendations\n• Scheduling appointments\n• General vehicle care advice\n\nWhat specific question do you have?"

	// WelcomeMessage opens every conversation
	WelcomeMessage = "Hello! I'm your ASSIST virtual assistant. I can help you with vehicle service questions, cost estimates, maintenance scheduling, and more. What would you like assistance with today?"
)

// DefaultRules returns the built-in rules in evaluation order. Order matters:
// "hi" is a plain substring test, so "which" or "this" reach the greeting
// when nothing earlier matched.
func DefaultRules() []Rule {
	serviceWords := containsAny("service", "maintenance")

	return []Rule{
		{Name: "cost", Match: containsAny("cost", "price", "estimate"), Response: costResponse},
		{Name: "when", Match: func(msg string) bool {
			return strings.Contains(msg, "when") && serviceWords(msg)
		}, Response: whenResponse},
		{Name: "oil-change", Match: containsAny("oil change"), Response: oilChangeResponse},
		{Name: "brake", Match: containsAny("brake"), Response: brakeResponse},
		{Name: "tire", Match: containsAny("tire"), Response: tireResponse},
		{Name: "schedule", Match: containsAny("schedule", "appointment"), Response: scheduleResponse},
		{Name: "greeting", Match: containsAny("hello", "hi", "help"), Response: greetingResponse},
	}
}

// Assistant answers free-text vehicle service questions from a rule list.
// The first matching rule wins.
type Assistant struct {
	rules    []Rule
	fallback string
}

func New(rules ...Rule) *Assistant {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Assistant{
		rules:    rules,
		fallback: FallbackResponse,
	}
}

// Respond returns the canned answer for msg
func (a *Assistant) Respond(msg string) string {
	_, response := a.Match(msg)
	return response
}

// Match returns the name of the rule that answered msg ("" for the
// fallback) together with the response
func (a *Assistant) Match(msg string) (string, string) {
	lower := strings.ToLower(msg)
	for _, r := range a.rules {
		if r.Match(lower) {
			return r.Name, r.Response
		}
	}
	return "", a.fallback
}
