package pgxstore

import (
	"fmt"

	"github.com/badgeth/the-graph-indexer-badges/web/graph"
)

// SQL queries
const (
	baseIndexersQuery = `SELECT
		id, own_stake, delegated_stake, allocated_stake, maximum_delegation,
		is_over_delegated, allocation_ratio, delegation_ratio,
		indexing_reward_cut_ratio, query_fee_cut_ratio,
		monthly_delegator_reward_rate, delegator_parameter_cooldown_block,
		created_at
	FROM indexers`

	indexerByAddressQuery = baseIndexersQuery + " WHERE id = $1"
)

// IndexersQueryBuilder provides a domain-specific language for building indexer queries
type IndexersQueryBuilder struct {
	sql  string
	args []any
}

// NewIndexersQuery creates a new indexer query builder
func NewIndexersQuery() *IndexersQueryBuilder {
	return &IndexersQueryBuilder{
		sql: baseIndexersQuery,
	}
}

// ForCriteria applies the indexer criteria to the query in one fluent call
func (q *IndexersQueryBuilder) ForCriteria(criteria graph.IndexersCriteria) *IndexersQueryBuilder {
	return q.
		filterByOverDelegated(criteria.OverDelegated).
		orderByDelegatedStakeDesc().
		paginateWithDetection(criteria)
}

// filterByOverDelegated narrows the result set by ceiling status; any matches everything
func (q *IndexersQueryBuilder) filterByOverDelegated(filter graph.OverDelegatedFilter) *IndexersQueryBuilder {
	switch filter {
	case graph.OverDelegatedOnly:
		q.addWhereCondition("is_over_delegated = $%d", true)
	case graph.OverDelegatedExclude:
		q.addWhereCondition("is_over_delegated = $%d", false)
	case graph.OverDelegatedAny:
		// No condition
	}
	return q
}

// orderByDelegatedStakeDesc orders the largest delegation pools first;
// the id tie-break keeps pagination stable for equal stakes
func (q *IndexersQueryBuilder) orderByDelegatedStakeDesc() *IndexersQueryBuilder {
	q.sql += " ORDER BY delegated_stake DESC, id"
	return q
}

// paginateWithDetection adds pagination with "has more" detection using LIMIT n+1
func (q *IndexersQueryBuilder) paginateWithDetection(criteria graph.IndexersCriteria) *IndexersQueryBuilder {
	// Request one extra item to detect if there are more pages
	limit := criteria.ItemsPerPage() + 1
	offset := criteria.ItemsToSkip()

	q.addParameter("LIMIT $%d", limit)

	if offset > 0 {
		q.addParameter("OFFSET $%d", offset)
	}

	return q
}

// Build returns the final SQL query and arguments
func (q *IndexersQueryBuilder) Build() (string, []any) {
	return q.sql, q.args
}

// Helper methods for building SQL

// addWhereCondition adds a WHERE condition, handling AND logic automatically
func (q *IndexersQueryBuilder) addWhereCondition(sqlClause string, value any) {
	placeholder := q.nextPlaceholder()

	if q.hasWhereClause() {
		q.sql += " AND " + fmt.Sprintf(sqlClause, placeholder)
	} else {
		q.sql += " WHERE " + fmt.Sprintf(sqlClause, placeholder)
	}

	q.args = append(q.args, value)
}

// addParameter adds a SQL clause with a parameter
func (q *IndexersQueryBuilder) addParameter(sqlClause string, value any) {
	placeholder := q.nextPlaceholder()
	q.sql += " " + fmt.Sprintf(sqlClause, placeholder)
	q.args = append(q.args, value)
}

// hasWhereClause checks if the query already has a WHERE clause
func (q *IndexersQueryBuilder) hasWhereClause() bool {
	// Simple check - could be more sophisticated if needed
	return len(q.args) > 0
}

// nextPlaceholder returns the next PostgreSQL placeholder ($1, $2, etc.)
func (q *IndexersQueryBuilder) nextPlaceholder() int {
	return len(q.args) + 1
}
