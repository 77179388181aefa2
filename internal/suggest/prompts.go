package suggest

// historyWindow is how many trailing turns accompany the meta-prompt.
const historyWindow = 4

const metaPrompt = `Based on our conversation so far, suggest 3 short follow-up questions the user might ask next about VidyaSangam, mentorship or their mentor-mentee relationship.

Each question must be under 60 characters and end with a question mark.

Respond with ONLY a JSON array of 3 strings, for example:
["How do I book a session?", "Can I change my mentor?", "What are badges?"]`

const initialMetaPrompt = `The user has just opened the VidyaSangam assistant. Suggest 3 short questions a new user might ask about the platform, mentorship or mentor matching.

Each question must be under 60 characters and end with a question mark.

Respond with ONLY a JSON array of 3 strings.`
