package core

import "math"

// roundHalfUp rounds a non-negative mean to the nearest integer, halves up.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// derivedOrderProgress returns the purchase order progress to store: the
// explicit value when set, otherwise the rounded average over part progress.
// An order with no parts keeps the explicit value.
func derivedOrderProgress(explicit int, parts []Part) int {
	if explicit != 0 || len(parts) == 0 {
		return explicit
	}
	sum := 0
	for _, p := range parts {
		sum += p.Progress
	}
	return roundHalfUp(float64(sum) / float64(len(parts)))
}

// partsChanged reports whether two parts arrays differ in content or order.
func partsChanged(before, after []Part) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}

// recomputeProjectProgress sets the project's progress to the rounded mean of
// its purchase orders' progress. A project with zero purchase orders keeps
// its current value.
func (tx *Transaction) recomputeProjectProgress(projectID string) {
	i := tx.findProject(projectID)
	if i < 0 {
		return
	}
	sum, count := 0, 0
	for _, po := range tx.state.purchaseOrders {
		if po.ProjectID == projectID {
			sum += po.Progress
			count++
		}
	}
	if count == 0 {
		return
	}
	tx.state.projects[i].Progress = roundHalfUp(float64(sum) / float64(count))
}
