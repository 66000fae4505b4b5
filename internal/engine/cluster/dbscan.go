package cluster

const (
	unvisited = -2
	noise     = -1
)

// dbscan runs density-based clustering over a precomputed symmetric
// distance matrix. Points that never reach a dense neighborhood get the
// noise label; cluster labels come out contiguous from zero in order of
// discovery.
func dbscan(dist [][]float64, eps float64, minSamples int) []int {
	n := len(dist)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		neighbors := regionQuery(dist, i, eps)
		if len(neighbors) < minSamples {
			labels[i] = noise
			continue
		}
		expandCluster(dist, labels, neighbors, next, eps, minSamples)
		next++
	}
	return labels
}

// regionQuery returns every point within eps of point i, including i.
func regionQuery(dist [][]float64, i int, eps float64) []int {
	var out []int
	for j, d := range dist[i] {
		if d <= eps {
			out = append(out, j)
		}
	}
	return out
}

// expandCluster grows one cluster from a seed core point by absorbing
// density-reachable neighbors. Points previously marked noise become
// border members; only points with dense neighborhoods of their own
// extend the frontier.
func expandCluster(dist [][]float64, labels []int, neighbors []int, label int, eps float64, minSamples int) {
	queue := append([]int(nil), neighbors...)
	for head := 0; head < len(queue); head++ {
		p := queue[head]
		if labels[p] == noise {
			labels[p] = label
			continue
		}
		if labels[p] != unvisited {
			continue
		}
		labels[p] = label

		reach := regionQuery(dist, p, eps)
		if len(reach) >= minSamples {
			queue = append(queue, reach...)
		}
	}
}
