package extract

import "regexp"

// pattern catalogs: a feature is present when any of its word-boundary
// patterns matches. Boundaries keep short names like "js" or "go" from
// firing inside other tokens.

type catalogEntry struct {
	name     string
	patterns []*regexp.Regexp
}

func compileCatalog(raw map[string][]string, order []string) []catalogEntry {
	out := make([]catalogEntry, 0, len(order))
	for _, name := range order {
		pats := raw[name]
		entry := catalogEntry{name: name, patterns: make([]*regexp.Regexp, 0, len(pats))}
		for _, p := range pats {
			entry.patterns = append(entry.patterns, regexp.MustCompile(p))
		}
		out = append(out, entry)
	}
	return out
}

var skillOrder = []string{
	"python", "javascript", "java", "typescript", "c++", "c#", "go", "rust",
	"php", "ruby", "swift", "kotlin", "scala",
	"html", "css", "react", "angular", "vue", "svelte", "jquery", "bootstrap", "tailwind",
	"django", "flask", "fastapi", "express", "spring", "laravel", "rails",
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "sqlite", "cassandra",
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins", "gitlab", "github", "git",
	"terraform", "ansible",
	"machine learning", "deep learning", "data science",
	"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "keras", "jupyter",
	"pytest", "jest", "selenium", "cypress", "unit testing",
	"graphql", "rest api", "microservices", "linux", "bash", "agile", "jira",
}

var skillPatterns = map[string][]string{
	"python":     {`\bpython\b`},
	"javascript": {`\bjavascript\b`, `\bjs\b`, `\bnode\.?js\b`},
	"java":       {`\bjava\b(?:[^s]|$)`, `\bjdk\b`},
	"typescript": {`\btypescript\b`, `\bts\b`},
	"c++":        {`\bc\+\+`, `\bcpp\b`},
	"c#":         {`\bc#`, `\bc sharp\b`, `\.net\b`},
	"go":         {`\bgolang\b`, `\bgo\s+(?:language|programming|developer|engineer)\b`},
	"rust":       {`\brust\b`},
	"php":        {`\bphp\b`},
	"ruby":       {`\bruby\b`},
	"swift":      {`\bswift\b`},
	"kotlin":     {`\bkotlin\b`},
	"scala":      {`\bscala\b`},

	"html":      {`\bhtml5?\b`},
	"css":       {`\bcss3?\b`},
	"react":     {`\breact(?:\.?js)?\b`},
	"angular":   {`\bangular(?:js)?\b`},
	"vue":       {`\bvue(?:\.?js)?\b`},
	"svelte":    {`\bsvelte\b`},
	"jquery":    {`\bjquery\b`},
	"bootstrap": {`\bbootstrap\b`},
	"tailwind":  {`\btailwind(?:css)?\b`},

	"django":  {`\bdjango\b`},
	"flask":   {`\bflask\b`},
	"fastapi": {`\bfastapi\b`},
	"express": {`\bexpress(?:\.?js)?\b`},
	"spring":  {`\bspring\s+(?:boot|framework)\b`},
	"laravel": {`\blaravel\b`},
	"rails":   {`\bruby\s+on\s+rails\b`, `\brails\b`},

	"sql":           {`\bsql\b`},
	"mysql":         {`\bmysql\b`},
	"postgresql":    {`\bpostgres(?:ql)?\b`},
	"mongodb":       {`\bmongo(?:db)?\b`},
	"redis":         {`\bredis\b`},
	"elasticsearch": {`\belasticsearch\b`},
	"sqlite":        {`\bsqlite\b`},
	"cassandra":     {`\bcassandra\b`},

	"aws":        {`\baws\b`, `\bamazon\s+web\s+services\b`},
	"azure":      {`\bazure\b`},
	"gcp":        {`\bgcp\b`, `\bgoogle\s+cloud\b`},
	"docker":     {`\bdocker\b`},
	"kubernetes": {`\bkubernetes\b`, `\bk8s\b`},
	"jenkins":    {`\bjenkins\b`},
	"gitlab":     {`\bgitlab\b`},
	"github":     {`\bgithub\b`},
	"git":        {`\bgit\b`},
	"terraform":  {`\bterraform\b`},
	"ansible":    {`\bansible\b`},

	"machine learning": {`\bmachine\s+learning\b`, `\bml\s+(?:engineer|models)\b`},
	"deep learning":    {`\bdeep\s+learning\b`},
	"data science":     {`\bdata\s+scien(?:ce|tist)\b`},
	"pandas":           {`\bpandas\b`},
	"numpy":            {`\bnumpy\b`},
	"scikit-learn":     {`\bscikit.learn\b`, `\bsklearn\b`},
	"tensorflow":       {`\btensorflow\b`},
	"pytorch":          {`\bpytorch\b`},
	"keras":            {`\bkeras\b`},
	"jupyter":          {`\bjupyter\b`},

	"pytest":       {`\bpytest\b`},
	"jest":         {`\bjest\b`},
	"selenium":     {`\bselenium\b`},
	"cypress":      {`\bcypress\b`},
	"unit testing": {`\bunit\s+test(?:s|ing)?\b`, `\bunittest\b`},

	"graphql":       {`\bgraphql\b`},
	"rest api":      {`\brest(?:ful)?\b`, `\brest\s+api\b`},
	"microservices": {`\bmicroservices?\b`},
	"linux":         {`\blinux\b`, `\bunix\b`},
	"bash":          {`\bbash\b`, `\bshell\s+script(?:s|ing)?\b`},
	"agile":         {`\bagile\b`, `\bscrum\b`},
	"jira":          {`\bjira\b`},
}

var benefitOrder = []string{
	"health insurance", "dental insurance", "vision insurance", "retirement plan",
	"paid time off", "flexible hours", "remote work", "stock options", "bonus",
	"gym membership", "food allowance", "learning budget", "conference attendance",
}

var benefitPatterns = map[string][]string{
	"health insurance":      {`\bhealth\s+insurance\b`, `\bmedical\s+coverage\b`},
	"dental insurance":      {`\bdental\s+(?:insurance|coverage)\b`},
	"vision insurance":      {`\bvision\s+(?:insurance|coverage)\b`},
	"retirement plan":       {`\b401k\b`, `\bretirement\s+plan\b`, `\bpension\b`},
	"paid time off":         {`\bpto\b`, `\bpaid\s+time\s+off\b`, `\bvacation\s+days\b`},
	"flexible hours":        {`\bflexible\s+(?:hours|schedule)\b`},
	"remote work":           {`\bremote\s+work\b`, `\bwork\s+from\s+home\b`, `\bwfh\b`},
	"stock options":         {`\bstock\s+options\b`, `\bequity\b`, `\brsus\b`},
	"bonus":                 {`\bbonus\b`},
	"gym membership":        {`\bgym\s+membership\b`, `\bfitness\s+center\b`},
	"food allowance":        {`\bfree\s+food\b`, `\bmeals\s+provided\b`, `\bfood\s+allowance\b`},
	"learning budget":       {`\b(?:learning|training)\s+budget\b`, `\bprofessional\s+development\b`},
	"conference attendance": {`\bconference\s+attendance\b`, `\btech\s+conferences\b`},
}

var sizeOrder = []string{"startup", "small", "medium", "large", "enterprise"}

var sizePatterns = map[string][]string{
	"startup":    {`\bstartup\b`, `\bearly\s+stage\b`, `\b1-10\s+employees\b`},
	"small":      {`\bsmall\s+company\b`, `\b1[01]-50\s+employees\b`},
	"medium":     {`\bmedium\s+company\b`, `\b5[01]-200\s+employees\b`},
	"large":      {`\blarge\s+company\b`, `\b20[01]-1000\s+employees\b`},
	"enterprise": {`\benterprise\b`, `\b1000\+\s+employees\b`, `\bfortune\s+500\b`},
}

var educationOrder = []string{
	"bachelor's degree", "master's degree", "phd",
	"computer science", "engineering", "mathematics", "statistics",
}

var educationPatterns = map[string][]string{
	"bachelor's degree": {`\bbachelor'?s?\s+degree\b`, `\bundergraduate\s+degree\b`},
	"master's degree":   {`\bmaster'?s?\s+degree\b`, `\bgraduate\s+degree\b`},
	"phd":               {`\bphd\b`, `\bdoctorate\b`, `\bdoctoral\s+degree\b`},
	"computer science":  {`\bcomputer\s+science\b`, `\bcs\s+degree\b`},
	"engineering":       {`\bengineering\s+degree\b`},
	"mathematics":       {`\bmathematics\b`, `\bmath\s+degree\b`},
	"statistics":        {`\bstatistics\b`, `\bstats\s+degree\b`},
}

var (
	skillCatalog     = compileCatalog(skillPatterns, skillOrder)
	benefitCatalog   = compileCatalog(benefitPatterns, benefitOrder)
	sizeCatalog      = compileCatalog(sizePatterns, sizeOrder)
	educationCatalog = compileCatalog(educationPatterns, educationOrder)
)

func scanCatalog(catalog []catalogEntry, text string) []string {
	var found []string
	for _, entry := range catalog {
		for _, p := range entry.patterns {
			if p.MatchString(text) {
				found = append(found, entry.name)
				break
			}
		}
	}
	return found
}
