package assessment

import "github.com/Mahaveer86619/mindguide/internal/domain"

// Reference tables. Read-only after init, safe to share across sessions.

const menuText = "Welcome to MindGuide AI!\n\n" +
	"Choose a test to begin:\n" +
	"1. Depression Test\n" +
	"2. Anxiety Test\n" +
	"3. Stress Test\n\n" +
	"Type 1, 2, or 3 to start."

const (
	selectionReprompt = "Please type 1, 2, or 3 to select a test."
	answerReprompt    = "Please answer with Yes or No only."
	terminalReply     = "Assessment complete. Click 'Take New Test' to start another assessment."
	failureReply      = "An error occurred. Please try again."
)

const disclaimer = "Disclaimer: This assessment is for informational purposes only and " +
	"does not constitute medical advice. Please consult with a qualified " +
	"healthcare professional for diagnosis and treatment."

const professionalHelp = "It is highly recommended to seek professional help from a mental health expert."

var menuSelections = map[string]domain.Condition{
	"1": domain.ConditionDepression,
	"2": domain.ConditionAnxiety,
	"3": domain.ConditionStress,
}

var themes = map[domain.Condition][domain.MaxAssessmentQuestions]string{
	domain.ConditionDepression: {
		"mood and sadness",
		"loss of interest or pleasure",
		"sleep patterns",
		"self-worth and guilt",
		"thoughts of self-harm",
	},
	domain.ConditionAnxiety: {
		"worry and nervousness",
		"avoidance behaviors",
		"panic and physical symptoms",
		"sleep and restlessness",
		"impact on daily life",
	},
	domain.ConditionStress: {
		"feeling overwhelmed",
		"physical symptoms",
		"concentration and memory",
		"irritability and mood",
		"relaxation and coping",
	},
}

// fallbackQuestions has exactly one entry per theme, index-aligned with themes.
var fallbackQuestions = map[domain.Condition][domain.MaxAssessmentQuestions]string{
	domain.ConditionDepression: {
		"Do you often feel sad or down?",
		"Have you lost interest in things you used to enjoy?",
		"Are you having trouble with sleep?",
		"Do you feel worthless or guilty?",
		"Have you had thoughts of harming yourself?",
	},
	domain.ConditionAnxiety: {
		"Do you frequently feel nervous or anxious?",
		"Do you avoid situations due to anxiety?",
		"Do you have panic attacks?",
		"Do you have trouble sleeping due to worry?",
		"Does anxiety interfere with your daily life?",
	},
	domain.ConditionStress: {
		"Do you feel overwhelmed daily?",
		"Do you have frequent headaches/tension?",
		"Do you have trouble concentrating?",
		"Do you feel irritable often?",
		"Do you find it hard to relax?",
	},
}

var doctors = map[domain.Condition][]domain.Doctor{
	domain.ConditionAnxiety: {
		{Name: "Dr. Sharma", Specialty: "Anxiety & Panic Disorders", Contact: "+91 9876543210"},
		{Name: "Dr. Patel", Specialty: "Clinical Psychology", Contact: "+91 8765432109"},
	},
	domain.ConditionDepression: {
		{Name: "Dr. Kumar", Specialty: "Depression & Mood Disorders", Contact: "+91 7654321098"},
		{Name: "Dr. Singh", Specialty: "Psychiatry", Contact: "+91 6543210987"},
	},
	domain.ConditionStress: {
		{Name: "Dr. Reddy", Specialty: "Stress Management", Contact: "+91 5432109876"},
		{Name: "Dr. Joshi", Specialty: "Behavioral Therapy", Contact: "+91 4321098765"},
	},
}

var recommendations = map[domain.Condition][]string{
	domain.ConditionDepression: {
		"Consider talking to a therapist or counselor.",
		"Engage in activities you used to enjoy, even if you don't feel like it.",
		"Maintain a regular sleep schedule and healthy diet.",
	},
	domain.ConditionAnxiety: {
		"Practice relaxation techniques such as deep breathing or meditation.",
		"Limit caffeine and alcohol intake.",
		"Engage in regular physical activity.",
	},
	domain.ConditionStress: {
		"Identify and manage stressors in your life.",
		"Practice mindfulness and relaxation techniques.",
		"Ensure you get enough sleep and exercise.",
	},
}

// Theme returns the theme for (c, index). It panics on an unknown condition
// or an index outside [0, MaxAssessmentQuestions).
func Theme(c domain.Condition, index int) string {
	mustIndex(c, index)
	return themes[c][index]
}

// FallbackQuestion returns the static question for (c, index), with the
// same panics as Theme.
func FallbackQuestion(c domain.Condition, index int) string {
	mustIndex(c, index)
	return fallbackQuestions[c][index]
}

// Doctors returns a copy of the referral list for c.
func Doctors(c domain.Condition) []domain.Doctor {
	return append([]domain.Doctor(nil), doctors[c]...)
}

// Disclaimer is the fixed closing line of every report.
func Disclaimer() string { return disclaimer }

// MenuText is the test-selection menu shown when a session starts.
func MenuText() string { return menuText }

func mustIndex(c domain.Condition, index int) {
	if !c.Valid() {
		panic("assessment: unknown condition " + string(c))
	}
	if index < 0 || index >= domain.MaxAssessmentQuestions {
		panic("assessment: question index out of range")
	}
}
