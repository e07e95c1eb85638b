package mockbackend

import "github.com/abhisek/studyhall/internal/api"

// Demo credentials accepted by a fresh server.
const (
	DemoEmail    = "user@test.com"
	DemoPassword = "password"
)

type cardFixture struct {
	question, answer, tag string
}

type questionFixture struct {
	question string
	options  []string
	correct  string
	tag      string
}

type challengeFixture struct {
	scenario, ideal, tag string
}

type setFixture struct {
	title      string
	cards      []cardFixture
	quizzes    [][]questionFixture
	challenges []challengeFixture
}

var demoSets = []setFixture{
	{
		title: "Biology Chapter 4",
		cards: []cardFixture{
			{"What is Mitochondria?", "The powerhouse of the cell.", "cell biology"},
			{"What is Photosynthesis?", "The process by which plants use sunlight to synthesize foods from carbon dioxide and water.", "plants"},
			{"What is DNA?", "Deoxyribonucleic acid, a self-replicating material present in nearly all living organisms as the main constituent of chromosomes.", "genetics"},
		},
		quizzes: [][]questionFixture{
			{
				{"What is the primary function of Mitochondria?", []string{"Photosynthesis", "Cellular Respiration", "Protein Synthesis", "Cell Division"}, "Cellular Respiration", "cell biology"},
				{"What is the main output of the Krebs cycle?", []string{"NADH and FADH2", "Oxygen", "Glucose", "Water"}, "NADH and FADH2", "metabolism"},
				{"Where does Glycolysis take place in the cell?", []string{"Nucleus", "Mitochondrial Matrix", "Cytoplasm", "Endoplasmic Reticulum"}, "Cytoplasm", "metabolism"},
			},
			{
				{"Which molecule carries genetic information?", []string{"ATP", "DNA", "Glucose", "Lipids"}, "DNA", "genetics"},
				{"Which organelle performs photosynthesis?", []string{"Mitochondria", "Ribosome", "Chloroplast", "Golgi apparatus"}, "Chloroplast", "plants"},
			},
		},
		challenges: []challengeFixture{
			{
				"A new toxin is discovered that specifically disables the enzyme responsible for Step 3 of the Krebs cycle. Based on your notes, what immediate metabolic consequences would you predict for a cell, and why?",
				"The immediate consequence would be the accumulation of the substrate for the disabled enzyme (isocitrate) and a deficit of all subsequent products, including alpha-ketoglutarate, NADH, and ATP. This would halt the Krebs cycle, drastically reducing the cell's energy production capacity.",
				"metabolism",
			},
			{
				"A plant is moved into a sealed dark room for a week. Predict what happens to its glucose reserves and explain the role of photosynthesis and respiration.",
				"Without light, photosynthesis stops so no new glucose is produced, while respiration continues to consume stored glucose for energy. Reserves decline until the plant starves.",
				"plants",
			},
		},
	},
	{
		title: "Economics Supply & Demand",
		cards: []cardFixture{
			{"What does the law of demand state?", "As price rises, quantity demanded falls, all else equal.", "demand"},
			{"What is an equilibrium price?", "The price at which quantity supplied equals quantity demanded.", "markets"},
		},
		quizzes: [][]questionFixture{
			{
				{"A price ceiling below equilibrium causes what?", []string{"Surplus", "Shortage", "No change", "Higher supply"}, "Shortage", "markets"},
				{"A rightward shift of supply does what to price?", []string{"Raises it", "Lowers it", "Leaves it unchanged", "Doubles it"}, "Lowers it", "supply"},
			},
		},
		challenges: []challengeFixture{
			{
				"A drought destroys a third of the coffee harvest. What happens to the price and quantity of coffee sold, and why?",
				"Supply shifts left because less coffee is available. The equilibrium price rises and the equilibrium quantity sold falls as buyers move along the demand curve.",
				"supply",
			},
		},
	},
	{
		title: "Intro to Python OOP",
		cards: []cardFixture{
			{"What is a class?", "A blueprint that defines the attributes and methods of its instances.", "classes"},
			{"What does self refer to?", "The instance on which a method is called.", "methods"},
			{"What is inheritance?", "A mechanism where a class derives attributes and methods from a parent class.", "inheritance"},
		},
		quizzes: [][]questionFixture{
			{
				{"Which method initialises a new instance?", []string{"__new__", "__init__", "__call__", "__str__"}, "__init__", "classes"},
				{"What does super() return?", []string{"The parent class", "A proxy to the parent", "The instance", "None"}, "A proxy to the parent", "inheritance"},
			},
		},
		challenges: []challengeFixture{
			{
				"You have Dog and Cat classes that duplicate a speak method and a name attribute. How would you restructure them, and what does that buy you?",
				"Introduce an Animal base class holding name and a speak method, and have Dog and Cat inherit from it, overriding speak. Shared behaviour lives in one place and new animals only add what differs.",
				"inheritance",
			},
		},
	},
}

// generatedSet is the content a fresh upload produces, keyed off its title.
func generatedSet(title string) setFixture {
	return setFixture{
		title: title,
		cards: []cardFixture{
			{"What is Drag and Drop?", "An intuitive way for users to select files.", "ux"},
			{"What is a Mock API?", "A fake API that mimics a real backend, allowing the frontend to be developed independently.", "testing"},
			{"Why is frontend-first useful?", "It allows for rapid prototyping and user feedback before backend development.", "process"},
		},
		quizzes: [][]questionFixture{
			{
				{"What does a mock API mimic?", []string{"A database", "A real backend", "A browser", "A compiler"}, "A real backend", "testing"},
			},
		},
		challenges: []challengeFixture{
			{
				"Your team must demo a feature before the backend exists. How do you proceed?",
				"Build the frontend against a mock API that mirrors the agreed contract, gather feedback early, then swap in the real backend.",
				"process",
			},
		},
	}
}

func (f questionFixture) toAPI(id api.ID) api.QuizQuestion {
	return api.QuizQuestion{ID: id, Question: f.question, Options: f.options, CorrectAnswer: f.correct, Tag: f.tag}
}
