package web

// WellnessTool is one guided exercise on the wellness tools panel. The
// content is static; the panel only renders it.
type WellnessTool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

var wellnessTools = []WellnessTool{
	{
		ID:          "breathing-478",
		Name:        "4-7-8 Breathing",
		Description: "A slow breathing cycle that calms the nervous system.",
		Steps: []string{
			"Breathe in quietly through your nose for 4 seconds.",
			"Hold your breath for 7 seconds.",
			"Exhale completely through your mouth for 8 seconds.",
			"Repeat the cycle four times.",
		},
	},
	{
		ID:          "box-breathing",
		Name:        "Box Breathing",
		Description: "Even counts in, hold, out, hold. Useful before stressful moments.",
		Steps: []string{
			"Inhale for 4 seconds.",
			"Hold for 4 seconds.",
			"Exhale for 4 seconds.",
			"Hold for 4 seconds, then repeat for a few minutes.",
		},
	},
	{
		ID:          "grounding-54321",
		Name:        "5-4-3-2-1 Grounding",
		Description: "An attention anchor for moments of anxiety or overwhelm.",
		Steps: []string{
			"Name 5 things you can see.",
			"Name 4 things you can touch.",
			"Name 3 things you can hear.",
			"Name 2 things you can smell.",
			"Name 1 thing you can taste.",
		},
	},
}
