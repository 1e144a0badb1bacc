package catalog

const pexels = "https://images.pexels.com/photos/"

// Feelings returns the homepage feeling shortcuts.
func Feelings() []Feeling {
	return []Feeling{
		{Name: "Sad", Icon: "sentiment_sad"},
		{Name: "Bored", Icon: "mood_bad"},
		{Name: "Confused", Icon: "psychology"},
		{Name: "Stressed", Icon: "sentiment_stressed"},
		{Name: "Lonely", Icon: "sentiment_dissatisfied"},
	}
}

func Stories() []Story {
	return []Story{
		{
			Icon:      "campaign",
			IconColor: "text-emerald-500",
			Title:     "Finding My Voice",
			Quote:     "I used to feel so alone, but reading others' stories helped me realize I wasn't. Now I share my own journey.",
			Likes:     42,
		},
		{
			Icon:      "lightbulb",
			IconColor: "text-purple-500",
			Title:     "A New Perspective",
			Quote:     "The AI guide gently led me to resources that truly resonated. It wasn't about answers, but finding the right questions.",
			Likes:     30,
		},
		{
			Icon:      "diversity_3",
			IconColor: "text-yellow-500",
			Title:     "Connecting Through Kindness",
			Quote:     "This community is a beacon. Just knowing others understand makes a world of difference.",
			Likes:     55,
		},
		{
			Icon:      "healing",
			IconColor: "text-sky-500",
			Title:     "Small Steps, Big Impact",
			Quote:     "I started with small affirmations from the feed, and slowly, they've transformed my outlook.",
			Likes:     38,
		},
	}
}

func avatar(id string) string {
	return pexels + id + "/pexels-photo-" + id + ".jpeg?auto=compress&cs=tinysrgb&w=256&h=256&dpr=1"
}

func cover(id string) string {
	return pexels + id + "/pexels-photo-" + id + ".jpeg?auto=compress&cs=tinysrgb&w=600"
}

// Professionals returns the directory in its seed order.
func Professionals() []Professional {
	return []Professional{
		{
			ID:           1,
			Name:         "Dr. Evelyn Reed",
			Image:        avatar("4101143"),
			Credentials:  "PhD, Licensed Psychologist",
			Type:         "Psychologist",
			Availability: ByAppointment,
			Pricing:      150,
			Specialties:  []string{"Anxiety", "Depression", "Trauma"},
			Bio:          "With over 15 years of experience, Dr. Reed specializes in cognitive-behavioral therapy (CBT) to help clients overcome personal challenges and develop resilient coping strategies. She believes in a collaborative approach, tailoring therapy to each individual's unique needs.",
			Approach:     "My primary approach is Cognitive Behavioral Therapy (CBT), supplemented with mindfulness techniques. I focus on identifying and challenging negative thought patterns to foster positive behavioral changes and improve emotional regulation.",
			Experience:   15,
			Languages:    []string{"English", "Spanish"},
			Rating:       4.9,
			Reviews: []Review{
				{Reviewer: "Alex P.", Rating: 5, Comment: "Dr. Reed was incredibly insightful and helped me see my challenges from a new perspective. Truly life-changing."},
				{Reviewer: "Sarah K.", Rating: 5, Comment: "Compassionate, professional, and effective. I felt understood and supported from our very first session."},
			},
		},
		{
			ID:           2,
			Name:         "Marcus Thorne",
			Image:        avatar("5378700"),
			Credentials:  "LCSW, Certified Counselor",
			Type:         "Counselor",
			Availability: AvailableNow,
			FreeSession:  true,
			Pricing:      90,
			Specialties:  []string{"Relationships", "Stress Management", "Life Transitions"},
			Bio:          "Marcus focuses on creating a supportive and non-judgmental space for couples and individuals to navigate life's complexities. He helps clients build stronger connections and develop effective communication skills.",
			Approach:     "I use a person-centered and strengths-based approach, focusing on your inherent ability to grow. For couples, I integrate techniques from the Gottman Method to improve communication and intimacy.",
			Experience:   8,
			Languages:    []string{"English"},
			Rating:       4.8,
			Reviews: []Review{
				{Reviewer: "James L.", Rating: 5, Comment: "Marcus helped my partner and I communicate better than we have in years. We are so grateful."},
				{Reviewer: "Emily R.", Rating: 4, Comment: "A very warm and understanding counselor. He provides practical tools that really work."},
			},
		},
		{
			ID:           3,
			Name:         "Dr. Alisha Chen",
			Image:        avatar("5215024"),
			Credentials:  "MD, Psychiatrist",
			Type:         "Psychiatrist",
			Availability: ByAppointment,
			Pricing:      250,
			Specialties:  []string{"Depression", "Bipolar Disorder", "Medication Management"},
			Bio:          "Dr. Chen provides comprehensive psychiatric evaluations and evidence-based medication management with a compassionate, patient-centered approach. She works closely with patients to find the most effective and sustainable treatment plan.",
			Approach:     "My practice combines psychopharmacology with supportive psychotherapy. I believe in a holistic view of mental health, considering biological, psychological, and social factors in treatment planning.",
			Experience:   12,
			Languages:    []string{"English", "Mandarin"},
			Rating:       4.9,
			Reviews: []Review{
				{Reviewer: "Daniel C.", Rating: 5, Comment: "Dr. Chen is extremely knowledgeable and took the time to explain everything to me. I finally feel like my treatment is on the right track."},
			},
		},
		{
			ID:           4,
			Name:         "Jamal Green",
			Image:        avatar("4226256"),
			Credentials:  "MFT, Marriage & Family Therapist",
			Type:         "Therapist",
			Availability: ByAppointment,
			FreeSession:  true,
			Pricing:      120,
			Specialties:  []string{"Relationships", "Family Conflict", "Parenting"},
			Bio:          "Jamal is dedicated to helping families and couples improve communication and resolve conflicts in a constructive and healing manner. He provides a safe space for all members to feel heard and valued.",
			Approach:     "I utilize Family Systems Theory to understand the dynamics within a family or couple. My goal is to help clients identify patterns and create new, healthier ways of interacting with one another.",
			Experience:   10,
			Languages:    []string{"English"},
			Rating:       4.7,
			Reviews: []Review{
				{Reviewer: "The G. Family", Rating: 5, Comment: "Jamal was instrumental in helping our family navigate a difficult time. His guidance was invaluable."},
			},
		},
		{
			ID:           5,
			Name:         "Sofia Reyes",
			Image:        avatar("4983184"),
			Credentials:  "LPCC, Professional Clinical Counselor",
			Type:         "Counselor",
			Availability: AvailableNow,
			Pricing:      100,
			Specialties:  []string{"Stress Management", "Anxiety", "Mindfulness"},
			Bio:          "Sofia integrates mindfulness and acceptance-based strategies to help clients manage stress and anxiety, fostering a sense of inner peace and self-compassion. She is passionate about empowering her clients.",
			Approach:     "My work is grounded in Acceptance and Commitment Therapy (ACT) and Mindfulness-Based Stress Reduction (MBSR). I help clients connect with their values and live more fully in the present moment.",
			Experience:   7,
			Languages:    []string{"English", "Spanish"},
			Rating:       4.8,
			Reviews: []Review{
				{Reviewer: "Jessica B.", Rating: 5, Comment: "Sofia taught me how to manage my anxiety in ways I never thought possible. Her approach is so gentle and effective."},
			},
		},
		{
			ID:           6,
			Name:         "Dr. Ben Carter",
			Image:        avatar("634021"),
			Credentials:  "PsyD, Clinical Psychologist",
			Type:         "Psychologist",
			Availability: ByAppointment,
			Pricing:      160,
			Specialties:  []string{"Trauma", "PTSD", "Grief & Loss"},
			Bio:          "Dr. Carter offers a trauma-informed approach, helping clients process difficult experiences and find a path toward healing and resilience. He creates a safe and validating environment for recovery.",
			Approach:     "I am trained in Eye Movement Desensitization and Reprocessing (EMDR) and other trauma-focused therapies. My work is sensitive to the pace of each client, ensuring a sense of safety throughout the therapeutic process.",
			Experience:   18,
			Languages:    []string{"English"},
			Rating:       5.0,
			Reviews: []Review{
				{Reviewer: "Anonymous", Rating: 5, Comment: "Dr. Carter helped me through the darkest time of my life. There are no words to express my gratitude."},
			},
		},
		{
			ID:           7,
			Name:         "Anya Sharma",
			Image:        avatar("4056535"),
			Credentials:  "Certified Yoga Therapist (C-IAYT)",
			Type:         "Yoga Therapist",
			Availability: AvailableNow,
			FreeSession:  true,
			Pricing:      75,
			Specialties:  []string{"Mind-Body Connection", "Stress Reduction", "Chronic Pain"},
			Bio:          "Anya combines ancient yoga traditions with modern therapeutic principles to help clients reconnect with their bodies. She specializes in creating personalized practices to support mental and physical well-being.",
			Approach:     "I use a combination of gentle movement (asana), breathwork (pranayama), and meditation to help calm the nervous system and increase body awareness. Each session is tailored to your unique physical and emotional needs.",
			Experience:   9,
			Languages:    []string{"English", "Hindi"},
			Rating:       4.9,
			Reviews: []Review{
				{Reviewer: "Laura M.", Rating: 5, Comment: "Anya's sessions are a true gift. I feel more centered and less anxious than ever before."},
			},
		},
		{
			ID:           8,
			Name:         "Brother Leo",
			Image:        avatar("3775087"),
			Credentials:  "Interfaith Spiritual Guide",
			Type:         "Spiritual Guide",
			Availability: ByAppointment,
			Pricing:      60,
			Specialties:  []string{"Spiritual Exploration", "Life Purpose", "Meditation"},
			Bio:          "Brother Leo offers guidance for individuals on any spiritual path, or no path at all. He provides a contemplative space to explore life's big questions, find meaning, and cultivate a deeper sense of purpose.",
			Approach:     "My role is not to provide answers, but to listen deeply and ask reflective questions. I draw from a wide range of wisdom traditions to help you connect with your own inner guidance and intuition.",
			Experience:   25,
			Languages:    []string{"English"},
			Rating:       5.0,
			Reviews: []Review{
				{Reviewer: "Chris T.", Rating: 5, Comment: "Speaking with Brother Leo brought me a profound sense of peace and clarity. He is a truly gifted listener."},
			},
		},
	}
}

func OpenCommunities() []Community {
	return []Community{
		{
			Title:        "Mindful Mornings",
			Description:  "A space to start your day with shared meditation and positive intentions.",
			Image:        cover("3621180"),
			Members:      150,
			Category:     "Meditation",
			CategoryIcon: "self_improvement",
		},
		{
			Title:        "Creative Flow Arts",
			Description:  "Express yourself through mandala art and mindful drawing practices.",
			Image:        cover("7164047"),
			Members:      85,
			Category:     "Mandala Art",
			CategoryIcon: "draw",
		},
		{
			Title:        "Sunset Yoga Flow",
			Description:  "Unwind from your day with a gentle and restorative yoga session.",
			Image:        cover("4056535"),
			Members:      210,
			Category:     "Yoga",
			CategoryIcon: "yoga",
		},
	}
}

func GuidedJourneys() []GuidedJourney {
	return []GuidedJourney{
		{
			Community: Community{
				Title:        "Breathwork Foundations",
				Description:  "Learn powerful pranayam techniques to calm your nervous system.",
				Image:        cover("3771120"),
				Members:      45,
				Category:     "Pranayam",
				CategoryIcon: "air",
			},
			GuideName: "Anya Sharma",
		},
		{
			Community: Community{
				Title:        "Mindful Mandala Creation",
				Description:  "Find focus and peace by creating beautiful mandala patterns. A journey of art and mindfulness.",
				Image:        cover("7164047"),
				Members:      35,
				Category:     "Mandala Art",
				CategoryIcon: "draw",
			},
			GuideName: "Sofia Reyes",
		},
		{
			Community: Community{
				Title:        "Deep Dive Meditation",
				Description:  "A structured 8-week course to deepen your meditation practice.",
				Image:        cover("1051838"),
				Members:      25,
				Category:     "Meditation",
				CategoryIcon: "self_improvement",
			},
			GuideName: "Brother Leo",
		},
	}
}

// Resources returns the library. Long-form content is abridged to its opening.
func Resources() []Resource {
	return []Resource{
		{
			ID:          1,
			Section:     "Meditation",
			Category:    "Audio",
			Duration:    "20 min",
			Title:       "Guided Yoga Nidra for Deep Rest",
			Description: "A calming practice to help you relax your body and mind completely for a restful sleep.",
			Image:       cover("228095"),
			Content:     "Find a comfortable position, close your eyes, and allow the sound of my voice to guide you into a state of deep relaxation. Yoga Nidra, or yogic sleep, is a powerful technique for releasing tension from your body and mind. There is nothing to do but listen.",
			MediaURL:    "#audio-placeholder-1",
		},
		{
			ID:          2,
			Section:     "Meditation",
			Category:    "Audio",
			Duration:    "10 min",
			Title:       "Morning Meditation for Focus",
			Description: "Start your day with clarity and intention through this brief and effective guided meditation.",
			Image:       cover("3771089"),
			Content:     "Welcome to your morning practice. This 10-minute session is designed to gently awaken your mind, setting a positive and focused tone for the day ahead. Let's begin by connecting with our breath.",
			MediaURL:    "#audio-placeholder-2",
		},
		{
			ID:          3,
			Section:     "Meditation",
			Category:    "Video",
			Duration:    "15 min",
			Title:       "Pranayam for Anxiety Relief",
			Description: "Learn a simple breathing technique to quickly calm your nervous system in moments of stress.",
			Image:       cover("7657388"),
			Bookmarked:  true,
			Content:     "Follow along with this guided video to learn a simple yet powerful breathing technique called 'box breathing'. This practice can help soothe your nervous system, reduce feelings of anxiety, and restore a sense of inner calm whenever you need it.",
			MediaURL:    "https://videos.pexels.com/video-files/4434246/4434246-sd_640_360_30fps.mp4",
		},
		{
			ID:          4,
			Section:     "Reading",
			Category:    "Article",
			Duration:    "8 min read",
			Title:       "My Journey Through Vipassana",
			Description: "An honest account of a 10-day silent retreat and the lessons learned about the mind.",
			Image:       cover("4347368"),
			Content:     "The bell rang at 4 a.m. a sound that would become the stark, unwavering metronome of my new reality. For the next ten days, there would be no talking, no reading, no writing, no eye contact. Just the silent, inward journey of Vipassana meditation.",
		},
		{
			ID:          5,
			Section:     "Reading",
			Category:    "Worksheet",
			Duration:    "5 min",
			Title:       "The Art of Journaling: 5 Prompts",
			Description: "Kickstart your self-reflection practice with these thought-provoking journaling exercises.",
			Image:       cover("5797991"),
			Content:     "Journaling is a powerful tool for self-discovery and emotional processing. It's a private space to explore your thoughts and feelings without judgment. Here are five prompts to help you begin your practice. Find a quiet space, take a few deep breaths, and write freely.",
		},
		{
			ID:          6,
			Section:     "Reading",
			Category:    "Article",
			Duration:    "6 min read",
			Title:       "Understanding Self-Compassion",
			Description: "Learn why being kind to yourself is not selfish, but essential for mental well-being.",
			Image:       cover("5699475"),
			Content:     "We are often our own harshest critics. The voice in our head that points out our flaws and replays our mistakes can be relentless. But what if we treated ourselves with the same kindness and understanding that we offer to a good friend? This is the essence of self-compassion.",
		},
	}
}
