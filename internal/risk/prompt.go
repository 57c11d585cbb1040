package risk

import (
	"fmt"
	"strings"

	"riskdigest/internal/core"
)

// ReportMarker is the section header every structured report must contain.
const ReportMarker = "Executive Summary"

// RefusalPhrase is what the model answers when an article carries no risk.
const RefusalPhrase = "can't produce report"

const reportSections = `<HTML>
<B>1. Executive Summary:</B>
<UL>
  <LI>Summarize the main points and the explicit financial risk identified in the article.</LI>
</UL>
<B>2. Background Information:</B>
<UL>
  <LI>Provide background on the event or issue, focusing on aspects related to the identified financial risk.</LI>
</UL>
<B>3. Key Data Extracted:</B>
<UL>
  <LI>List key figures, statistics, and significant quotes that are relevant to the financial risk.</LI>
</UL>
<B>4. Market and Economic Indicators Impacted:</B>
<UL>
  <LI>Discuss the impact on financial markets and economic indicators as it relates to the identified risk.</LI>
</UL>
<B>5. Industry-Specific Impact:</B>
<UL>
  <LI>Detail the effects on industries, specifically in relation to the financial risk highlighted in the article.</LI>
</UL>
<B>6. Company-Specific Impact:</B>
<UL>
  <LI>If specific companies are mentioned in the context of the financial risk, explain how the event impacts them.</LI>
</UL>
<B>7. Regulatory and Compliance Implications:</B>
<UL>
  <LI>Mention any regulatory or compliance issues related to the financial risk.</LI>
</UL>
<B>8. Risk Assessment:</B>
<UL>
  <LI>Assess the financial risks, focusing on those explicitly mentioned or implied in the article.</LI>
</UL>
<B>9. Mitigation Strategies and Recommendations:</B>
<UL>
  <LI>Suggest strategies for mitigating the identified financial risks, based on the article.</LI>
</UL>
<B>10. Conclusion:</B>
<UL>
  <LI>Conclude with the overall implications of the identified financial risk.</LI>
</UL>
</HTML>`

// BuildPrompt creates the risk assessment prompt for a single article
func BuildPrompt(article core.Article) string {
	var prompt strings.Builder

	prompt.WriteString("Carefully review the following negative news article in the 'Economy, Business, and Finance' category ")
	prompt.WriteString("and determine if there is an explicit financial risk emerging from its content. The article is as follows:\n\n")
	prompt.WriteString("[\n")
	prompt.WriteString(article.Text)
	prompt.WriteString("\n]\n\n")
	prompt.WriteString("If the article explicitly mentions or clearly implies a financial risk, generate a detailed financial risk analysis report in HTML format. ")
	prompt.WriteString("Use <B> tags to highlight the titles of each section and <UL> and <LI> tags for listing items. ")
	prompt.WriteString("The report should include the following sections:\n\n")
	prompt.WriteString(reportSections)
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf("If the article does not explicitly mention or imply a financial risk, please respond with: %s.\n", RefusalPhrase))

	return prompt.String()
}

// IsStructuredReport reports whether a model response is a report rather than a refusal.
func IsStructuredReport(text string) bool {
	return strings.Contains(text, ReportMarker)
}
