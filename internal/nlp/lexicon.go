package nlp

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var stopWords = wordSet(
	"a", "about", "above", "across", "after", "afterwards", "again", "against", "all", "almost",
	"alone", "along", "already", "also", "although", "always", "am", "among", "amongst", "amount",
	"an", "and", "another", "any", "anyhow", "anyone", "anything", "anyway", "anywhere", "are",
	"around", "as", "at", "back", "be", "became", "because", "become", "becomes", "becoming",
	"been", "before", "beforehand", "behind", "being", "below", "beside", "besides", "between",
	"beyond", "both", "bottom", "but", "by", "ca", "call", "can", "cannot", "could", "did", "do",
	"does", "doing", "done", "down", "due", "during", "each", "either", "else", "elsewhere",
	"empty", "enough", "even", "ever", "every", "everyone", "everything", "everywhere", "except",
	"few", "first", "for", "former", "formerly", "from", "front", "full", "further", "get", "give",
	"go", "had", "has", "have", "he", "hence", "her", "here", "hereafter", "hereby", "herein",
	"hereupon", "hers", "herself", "him", "himself", "his", "how", "however", "i", "if", "in",
	"indeed", "into", "is", "it", "its", "itself", "just", "keep", "last", "latter", "latterly",
	"least", "less", "made", "make", "many", "may", "me", "meanwhile", "might", "mine", "more",
	"moreover", "most", "mostly", "move", "much", "must", "my", "myself", "name", "namely",
	"neither", "never", "nevertheless", "next", "no", "nobody", "none", "noone", "nor", "not",
	"nothing", "now", "nowhere", "of", "off", "often", "on", "once", "one", "only", "onto", "or",
	"other", "others", "otherwise", "our", "ours", "ourselves", "out", "over", "own", "part", "per",
	"perhaps", "please", "put", "quite", "rather", "re", "really", "regarding", "same", "say", "see",
	"seem", "seemed", "seeming", "seems", "serious", "several", "she", "should", "show", "side",
	"since", "so", "some", "somehow", "someone", "something", "sometime", "sometimes", "somewhere",
	"still", "such", "take", "than", "that", "the", "their", "them", "themselves", "then", "thence",
	"there", "thereafter", "thereby", "therefore", "therein", "thereupon", "these", "they", "third",
	"this", "those", "though", "through", "throughout", "thru", "thus", "to", "together", "too",
	"top", "toward", "towards", "under", "unless", "until", "up", "upon", "us", "used", "using",
	"various", "very", "via", "was", "we", "well", "were", "what", "whatever", "when", "whence",
	"whenever", "where", "whereafter", "whereas", "whereby", "wherein", "whereupon", "wherever",
	"whether", "which", "while", "whither", "who", "whoever", "whole", "whom", "whose", "why",
	"will", "with", "within", "without", "would", "yet", "you", "your", "yours", "yourself",
	"yourselves",
)

var closedClass = map[string]string{}

func init() {
	for _, class := range []struct {
		pos   string
		words []string
	}{
		{POSDet, []string{"a", "an", "the", "this", "that", "these", "those", "each", "every", "any", "some",
			"all", "both", "either", "neither", "no", "another", "such", "what", "which", "whose"}},
		{POSPron, []string{"i", "me", "my", "mine", "myself", "you", "your", "yours", "yourself", "yourselves",
			"he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself", "we",
			"us", "our", "ours", "ourselves", "they", "them", "their", "theirs", "themselves", "who",
			"whom", "whoever", "anyone", "someone", "everyone", "nobody", "anything", "something",
			"everything", "nothing"}},
		{POSAdp, []string{"about", "above", "across", "after", "against", "along", "among", "around", "at",
			"before", "behind", "below", "beneath", "beside", "between", "beyond", "by", "despite",
			"down", "during", "except", "for", "from", "in", "inside", "into", "like", "near", "of",
			"off", "on", "onto", "out", "outside", "over", "per", "since", "through", "throughout",
			"toward", "towards", "under", "until", "up", "upon", "via", "with", "within", "without"}},
		{POSCconj, []string{"and", "or", "but", "nor", "yet", "plus"}},
		{POSSconj, []string{"because", "although", "though", "while", "whereas", "if", "unless", "whether",
			"as", "than", "so"}},
		{POSAux, []string{"be", "am", "is", "are", "was", "were", "been", "being", "have", "has", "had",
			"do", "does", "did", "will", "would", "shall", "should", "can", "could", "may", "might",
			"must"}},
		{POSPart, []string{"to", "not", "n't"}},
		{POSAdv, []string{"also", "very", "well", "always", "often", "never", "already", "currently", "just",
			"only", "still", "even", "too", "quite", "rather", "now", "then", "here", "there", "how",
			"when", "where", "why", "again", "together", "ideally", "preferably", "etc"}},
	} {
		for _, w := range class.words {
			if _, taken := closedClass[w]; !taken {
				closedClass[w] = class.pos
			}
		}
	}
}

var knownVerbs = wordSet(
	"develop", "build", "design", "manage", "lead", "work", "collaborate", "write", "maintain",
	"implement", "create", "support", "ensure", "drive", "deliver", "mentor", "own", "test",
	"deploy", "optimize", "improve", "use", "join", "help", "seek", "require", "prefer", "look",
	"apply", "architect", "partner", "communicate", "analyze", "automate", "scale", "monitor",
	"troubleshoot", "debug", "review", "define", "contribute", "participate", "learn", "grow",
	"provide", "offer", "integrate", "migrate", "operate", "run", "ship", "solve", "understand",
	"coordinate", "plan", "research", "train", "document", "configure", "administer", "establish",
	"identify", "evaluate", "enhance", "enable", "empower", "hire", "report", "thrive", "know",
	"contact", "email", "send", "submit", "visit", "reach",
)

// titleWords name roles and seniority levels. Capitalized in a job title
// they are still common words, not names.
var titleWords = wordSet(
	"engineer", "engineers", "developer", "developers", "manager", "director", "architect",
	"analyst", "scientist", "designer", "consultant", "specialist", "administrator", "officer",
	"intern", "recruiter", "lead", "head", "principal", "staff", "senior", "junior", "chief",
	"president", "programmer", "technician", "coordinator", "associate", "owner",
)

var knownAdjectives = wordSet(
	"strong", "excellent", "senior", "junior", "good", "great", "new", "remote", "large",
	"scalable", "proficient", "familiar", "fast", "solid", "deep", "high", "low", "key", "small",
	"competitive", "hybrid", "full", "complex", "modern", "reliable", "distributed", "robust",
	"preferred", "required", "relevant", "technical", "independent", "dynamic", "equivalent",
	"related", "similar", "bonus", "plus", "flexible", "collaborative", "innovative", "agile",
	"hands-on", "best", "better", "nice", "open", "secure", "efficient", "clean", "quality",
)

var orgSuffixes = wordSet(
	"inc", "inc.", "corp", "corp.", "corporation", "llc", "ltd", "ltd.", "co", "co.", "company",
	"technologies", "technology", "labs", "systems", "group", "university", "institute",
	"solutions", "software", "partners", "holdings", "bank", "foundation", "agency",
)

var places = wordSet(
	"new york", "san francisco", "seattle", "austin", "boston", "chicago", "los angeles",
	"denver", "atlanta", "london", "berlin", "paris", "amsterdam", "dublin", "toronto",
	"vancouver", "bangalore", "singapore", "tokyo", "sydney", "usa", "us", "u.s.", "uk",
	"united states", "united kingdom", "canada", "germany", "france", "india", "australia",
	"california", "texas", "washington", "europe", "asia", "emea", "apac", "latam",
)

var languages = wordSet(
	"english", "spanish", "french", "german", "mandarin", "chinese", "japanese", "portuguese",
	"italian", "dutch", "korean", "arabic", "hindi", "russian",
)

var firstNames = wordSet(
	"john", "jane", "michael", "sarah", "david", "emily", "james", "mary", "robert", "linda",
	"william", "elizabeth", "alex", "chris", "daniel", "laura", "mark", "anna", "peter", "maria",
)

var irregularLemmas = map[string]string{
	"was": "be", "were": "be", "is": "be", "are": "be", "am": "be", "been": "be", "being": "be",
	"has": "have", "had": "have", "having": "have",
	"did": "do", "does": "do", "done": "do", "doing": "do",
	"built": "build", "led": "lead", "wrote": "write", "written": "write", "writing": "write",
	"ran": "run", "running": "run", "made": "make", "making": "make", "took": "take",
	"taken": "take", "grew": "grow", "grown": "grow", "knew": "know", "known": "know",
	"using": "use", "used": "use", "people": "person", "children": "child", "men": "man",
	"women": "woman", "better": "good", "best": "good", "thought": "think", "brought": "bring",
	"began": "begin", "begun": "begin", "shipped": "ship", "owned": "own", "drove": "drive",
	"driven": "drive", "driving": "drive", "came": "come", "coming": "come", "gave": "give",
	"given": "give", "giving": "give",
}
