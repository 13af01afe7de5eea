package skillmodel

// DefaultSystemPrompt instructs the remote model how to extract skills
const DefaultSystemPrompt = `You are a skills taxonomy analyst who extracts skills from job postings. Your core principles are:

- Extract only skills that are explicitly stated in the posting
- NEVER infer skills from company names, job titles or benefits
- Use the canonical name of each skill (for example "Kubernetes" for "k8s")
- Report the exact text span that mentions the skill as its surface form

Classify each skill as "Hard Skill" (tools, languages, platforms, methods) or "Soft Skill" (interpersonal and organisational abilities).`

// DefaultUserPrompt is the per-posting prompt. %s is the normalized posting text.
const DefaultUserPrompt = `Extract every skill mentioned in the following job posting.

For each skill return:
- skill: the canonical skill name
- surface_form: the text exactly as it appears in the posting
- skill_type: "Hard Skill" or "Soft Skill"
- confidence: a number between 0 and 1 expressing how certain you are that the posting requires or mentions this skill

Job posting:
"""
%s
"""`
