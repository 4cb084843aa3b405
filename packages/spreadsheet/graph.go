package spreadsheet

// DirectDependents returns the cells whose formulas read the cell at addr
func (s *Sheet) DirectDependents(addr CellAddress) ([]*Cell, error) {
	cell, err := s.Cell(addr)
	if err != nil {
		return nil, err
	}
	return cell.Dependents(), nil
}

// AllDependents returns every cell affected by the cell at addr (transitive
// closure), ordered by row and then column. unlike the recalculation
// cascade it keeps a visited set, so cycles are reported once.
func (s *Sheet) AllDependents(addr CellAddress) ([]*Cell, error) {
	cell, err := s.Cell(addr)
	if err != nil {
		return nil, err
	}

	visited := make(map[*Cell]struct{})
	var result []*Cell
	collectDependents(cell, visited, &result)

	sortCells(result)
	return result, nil
}

// collectDependents recursively collects all dependents
func collectDependents(cell *Cell, visited map[*Cell]struct{}, result *[]*Cell) {
	if _, alreadyVisited := visited[cell]; alreadyVisited {
		return
	}
	visited[cell] = struct{}{}

	for _, dependent := range cell.Dependents() {
		if _, alreadyVisited := visited[dependent]; !alreadyVisited {
			*result = append(*result, dependent)
			collectDependents(dependent, visited, result)
		}
	}
}

// Precedents returns the cells the cell at addr is registered as a
// dependent of, i.e. the cells its current formula reads. edges are stored
// on the referenced side only, so this scans the grid.
func (s *Sheet) Precedents(addr CellAddress) ([]*Cell, error) {
	target, err := s.Cell(addr)
	if err != nil {
		return nil, err
	}

	var result []*Cell
	for _, cell := range s.Cells() {
		if cell.HasDependent(target) {
			result = append(result, cell)
		}
	}
	return result, nil
}
