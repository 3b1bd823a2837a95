package scoring

import (
	"strings"
	"unicode"
)

// Difficulty labels stored on skills.
const (
	Beginner     = "Beginner"
	Intermediate = "Intermediate"
	Advanced     = "Advanced"
)

// Category groups taxonomy skills.
type Category struct {
	Name   string
	Skills []string
}

// Taxonomy is the fixed IT skill catalogue used for keyword extraction.
var Taxonomy = []Category{
	{Name: "AI/ML", Skills: []string{
		"Generative AI", "GenAI", "LLM", "Large Language Models", "GPT",
		"LangChain", "LangGraph", "Prompt Engineering", "RAG",
		"Retrieval Augmented Generation", "Fine-tuning", "Vector Databases",
		"Embeddings", "Transformers", "BERT", "OpenAI", "Hugging Face",
		"Machine Learning", "Deep Learning", "Neural Networks", "NLP",
		"Computer Vision", "TensorFlow", "PyTorch", "Keras",
	}},
	{Name: "Programming", Skills: []string{
		"Python", "JavaScript", "TypeScript", "Java", "C++", "C#",
		"Go", "Rust", "Ruby", "PHP", "Swift", "Kotlin",
		"Object-Oriented Programming", "Functional Programming",
		"Data Structures", "Algorithms", "Design Patterns",
	}},
	{Name: "Web Development", Skills: []string{
		"HTML", "CSS", "React", "Vue.js", "Angular", "Next.js",
		"Node.js", "Express", "Django", "Flask", "FastAPI",
		"REST APIs", "GraphQL", "WebSockets", "Responsive Design",
		"Frontend", "Backend", "Full Stack",
	}},
	{Name: "Cloud", Skills: []string{
		"AWS", "Azure", "Google Cloud", "GCP", "Cloud Computing",
		"Docker", "Kubernetes", "Serverless", "Lambda", "EC2",
		"S3", "Container", "Microservices", "Cloud Architecture",
	}},
	{Name: "Database", Skills: []string{
		"SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis",
		"Database Design", "NoSQL", "Relational Database",
		"Supabase", "Firebase", "DynamoDB", "Cassandra",
	}},
	{Name: "DevOps", Skills: []string{
		"Git", "GitHub", "GitLab", "CI/CD", "Jenkins",
		"GitHub Actions", "DevOps", "Automation", "Testing",
		"Unit Testing", "Integration Testing", "Deployment",
	}},
	{Name: "Data Science", Skills: []string{
		"Data Analysis", "Data Visualization", "pandas", "NumPy",
		"Matplotlib", "Seaborn", "Jupyter", "Statistics",
		"Big Data", "Spark", "Hadoop", "ETL",
	}},
	{Name: "Mobile", Skills: []string{
		"iOS Development", "Android Development", "React Native",
		"Flutter", "Mobile Apps", "SwiftUI", "Jetpack Compose",
	}},
}

// KeywordConfidence is assigned to every taxonomy keyword hit.
const KeywordConfidence = 0.8

// SkillMatch is one taxonomy skill found in a text.
type SkillMatch struct {
	Name       string  `json:"skill_name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ExtractSkills returns taxonomy skills mentioned in text, in taxonomy order.
// Matches must sit on word boundaries so short names like "Go" do not fire
// inside "Google".
func ExtractSkills(text string) []SkillMatch {
	lower := strings.ToLower(text)
	var out []SkillMatch
	for _, cat := range Taxonomy {
		for _, skill := range cat.Skills {
			if containsWord(lower, strings.ToLower(skill)) {
				out = append(out, SkillMatch{Name: skill, Category: cat.Name, Confidence: KeywordConfidence})
			}
		}
	}
	return out
}

var (
	beginnerKeywords = []string{
		"html", "css", "python", "git", "sql", "javascript basics",
		"data structures", "algorithms", "programming basics",
	}
	advancedKeywords = []string{
		"kubernetes", "distributed systems", "fine-tuning", "rag",
		"advanced", "architecture", "scalability", "microservices",
		"system design",
	}
)

// Difficulty classifies a skill name; beginner keywords take precedence.
func Difficulty(skill string) string {
	lower := strings.ToLower(skill)
	for _, kw := range beginnerKeywords {
		if strings.Contains(lower, kw) {
			return Beginner
		}
	}
	for _, kw := range advancedKeywords {
		if strings.Contains(lower, kw) {
			return Advanced
		}
	}
	return Intermediate
}

// Focus is the difficulty a student level should study now, next and later.
type Focus struct {
	Immediate string
	Next      string
	Advanced  string
}

var levelFocus = map[string]Focus{
	"freshman":  {Beginner, Intermediate, Advanced},
	"sophomore": {Beginner, Intermediate, Advanced},
	"junior":    {Intermediate, Advanced, Advanced},
	"senior":    {Intermediate, Advanced, Advanced},
	"graduate":  {Advanced, Advanced, Advanced},
}

// LevelFocus maps a student level label to its focus; unknown labels use Junior.
func LevelFocus(level string) Focus {
	if f, ok := levelFocus[strings.ToLower(strings.TrimSpace(level))]; ok {
		return f
	}
	return levelFocus["junior"]
}

func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		i := start + idx
		j := i + len(word)
		if boundary(text, i-1) && boundary(text, j) {
			return true
		}
		start = i + 1
	}
}

// boundary reports whether the byte at i is outside text or not alphanumeric.
func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
