package entity

import (
	"fmt"
	"strings"
)

// executionOrder walks tasks depth first in declaration order and emits each
// task after its dependencies. Dependencies that name no task are skipped;
// Validate reports them. Task ids must be unique.
func executionOrder(tasks []Task) ([]string, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.TaskID] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(tasks))
	order := make([]string, 0, len(tasks))
	var path []int

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return cycleError(tasks, path, i)
		}

		state[i] = visiting
		path = append(path, i)
		for _, dep := range tasks[i].Dependencies {
			j, ok := index[dep]
			if !ok {
				continue
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[i] = done

		order = append(order, tasks[i].TaskID)
		return nil
	}

	for i := range tasks {
		if state[i] == unvisited {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// cycleError names the loop closed by revisiting start, reading "a -> b" as
// "a depends on b".
func cycleError(tasks []Task, path []int, start int) error {
	var ids []string
	for k, i := range path {
		if i == start {
			for _, j := range path[k:] {
				ids = append(ids, tasks[j].TaskID)
			}
			break
		}
	}
	ids = append(ids, tasks[start].TaskID)
	return fmt.Errorf("circular dependency detected: %s", strings.Join(ids, " -> "))
}
