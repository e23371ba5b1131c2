package summarize

// systemPrompt frames the daily digest: a first-person narrative plus
// structured facts for the vector memory.
const systemPrompt = `You are a personal digital-twin assistant.
Summarize the user's daily activity timeline into a coherent first-person narrative.
You must also extract structured facts for a memory database.

Respond with a single valid JSON object with exactly two keys:
1. "narrative": a markdown string (3-5 paragraphs) describing the day in first person ("I did ...").
2. "facts": a list of short, independent strings, each one key fact or topic (e.g. "Worked on the fuser merge walk", "Fixed session gap bug").

Example:
{
  "narrative": "Today I focused on ...",
  "facts": ["Implemented: auth module", "Fixed: login bug"]
}`

// mapPrompt summarizes one chunk of an oversized timeline.
const mapPrompt = `The following entries are a partial segment of my day. Summarize them briefly into bullet points.

Entries:
%s`

// mapSystemPrompt frames the map step.
const mapSystemPrompt = `Summarize these activity log entries into concise bullet points.`

// finalPrompt asks for the daily journal from the (possibly reduced)
// timeline context.
const finalPrompt = `Here is my activity timeline for %s:

%s

Synthesize this into a meaningful daily journal entry.`
