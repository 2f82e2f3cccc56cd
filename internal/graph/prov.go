package graph

import "time"

// Provenance names the agent responsible for a change and when it happened.
type Provenance struct {
	Agent IRI
	At    time.Time
}

// Enabled reports whether provenance should be recorded. Without an agent no
// record is written.
func (p Provenance) Enabled() bool {
	return p.Agent != ""
}

// GenerationTriples records that entity was created by the agent. node is
// the blank node that carries the qualified generation.
func GenerationTriples(entity, node Term, p Provenance) []Triple {
	return qualified(entity, node, ProvQualifiedGeneration, ProvGeneration, p)
}

// RevisionTriples records that entity was revised by the agent.
func RevisionTriples(entity, node Term, p Provenance) []Triple {
	return qualified(entity, node, ProvQualifiedRevision, ProvRevision, p)
}

func qualified(entity, node Term, link, class IRI, p Provenance) []Triple {
	return []Triple{
		T(entity, link, node),
		T(node, RDFType, class.Term()),
		T(node, ProvAtTime, TypedLiteral(p.At.UTC().Format(time.RFC3339), XSDDateTime)),
		T(node, ProvAgent, p.Agent.Term()),
	}
}
