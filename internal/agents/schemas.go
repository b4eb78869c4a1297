package agents

// JSON schemas for model replies. They check shape only; the prompts carry the semantics.

const foundersSchema = `{
  "type": "object",
  "required": ["founders"],
  "properties": {
    "founders": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "role": {"type": "string"},
          "background": {"type": "string"},
          "experience": {"type": "string"},
          "education": {"type": "string"},
          "skills": {"type": "string"},
          "interests": {"type": "string"}
        }
      }
    }
  }
}`

const credibilitySchema = `{
  "type": "object",
  "required": ["credibility_score"],
  "properties": {
    "credibility_score": {"type": "number", "minimum": 0, "maximum": 100},
    "is_technical_founder": {"type": "boolean"},
    "background_verified": {"type": "boolean"},
    "linkedin_found": {"type": "boolean"},
    "startup_experience": {"type": "boolean"},
    "discrepancies": {"type": "array", "items": {"type": "string"}},
    "technical_evidence": {"type": "array", "items": {"type": "string"}},
    "verified_facts": {"type": "array", "items": {"type": "string"}},
    "red_flags": {"type": "array", "items": {"type": "string"}},
    "confidence_level": {"enum": ["low", "medium", "high"]}
  }
}`

const competitionSchema = `{
  "type": "object",
  "properties": {
    "competitor_claims": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["competitor_name"],
        "properties": {
          "competitor_name": {"type": "string"},
          "factual_claims": {"type": "array", "items": {"type": "string"}},
          "feature_claims": {"type": "array", "items": {"type": "string"}},
          "performance_claims": {"type": "array", "items": {"type": "string"}},
          "positioning_claims": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "market_position_claims": {"type": "array", "items": {"type": "string"}}
  }
}`

const verificationsSchema = `{
  "type": "object",
  "required": ["claim_verifications"],
  "properties": {
    "claim_verifications": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "claim": {"type": "string"},
          "verdict": {"type": "string"},
          "confidence": {"type": "string"},
          "supporting_evidence": {"type": "string"},
          "contradicting_evidence": {"type": "string"},
          "accuracy_score": {"type": "number"},
          "evidence_quality": {"type": "string"}
        }
      }
    }
  }
}`

const feedbackItemsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["feedback", "coordinates", "page_number", "status"],
    "properties": {
      "feedback": {"type": "string"},
      "coordinates": {
        "type": "object",
        "required": ["x0", "y0", "x1", "y1"],
        "properties": {
          "x0": {"type": "number"},
          "y0": {"type": "number"},
          "x1": {"type": "number"},
          "y1": {"type": "number"}
        }
      },
      "page_number": {"type": "integer"},
      "slide_type": {"type": "string"},
      "status": {"type": "string"}
    }
  }
}`
