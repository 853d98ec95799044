package castepbin

// specEntry pins an ordered field tuple to the section header it follows.
type specEntry struct {
	header string
	fields []Field
}

// The two layout tables are plain immutable data built once at startup.
// The checkpoint table differs only by the wavefunction block wedged
// between the band-count composite and the eigenvalue block.
var (
	standardSpec   = buildSpec(false)
	checkpointSpec = buildSpec(true)
)

// buildSpec lays out the known section vocabulary. The cell sections are
// written twice by CASTEP, once for the original cell and once for the
// current one; the scanner stores the second occurrence under a _01 suffix.
// Both decode to the same field names, so the current cell wins wherever it
// is present and files carrying a single copy still populate everything.
func buildSpec(checkpoint bool) []specEntry {
	cellFields := func(suffix string) []specEntry {
		return []specEntry{
			{"CELL%NUM_IONS" + suffix, []Field{scalar("num_ions", DTypeInt)}},
			{"CELL%MAX_IONS_IN_SPECIES" + suffix, []Field{scalar("max_ions_in_species", DTypeInt)}},
			{"CELL%REAL_LATTICE" + suffix, []Field{array("real_lattice", DTypeFloat, lit(3), lit(3))}},
			{"CELL%RECIP_LATTICE" + suffix, []Field{array("recip_lattice", DTypeFloat, lit(3), lit(3))}},
			{"CELL%NUM_SPECIES" + suffix, []Field{scalar("num_species", DTypeInt)}},
			{"CELL%NUM_IONS_IN_SPECIES" + suffix, []Field{array("num_ions_in_species", DTypeInt, ref("num_species"))}},
			{"CELL%IONIC_POSITIONS" + suffix, []Field{
				array("ionic_positions", DTypeFloat, lit(3), ref("max_ions_in_species"), ref("num_species")),
			}},
			{"CELL%SPECIES_SYMBOL" + suffix, []Field{strArray("species_symbol", 8, ref("num_species"))}},
			{"NKPTS" + suffix, []Field{scalar("nkpts", DTypeInt)}},
			{"KPOINTS" + suffix, []Field{array("kpoints", DTypeFloat, lit(3), ref("nkpts"))}},
			{"KPOINT_WEIGHTS" + suffix, []Field{array("kpoint_weights", DTypeFloat, ref("nkpts"))}},
		}
	}

	endCellGlobal := []Field{
		boolean("found_ground_state_wavefunction"),
		boolean("found_ground_state_density"),
		scalar("total_energy", DTypeFloat),
		scalar("fermi_energy", DTypeFloat),
		composite(
			scalar("nbands", DTypeInt),
			scalar("nspins", DTypeInt),
		),
	}
	if checkpoint {
		endCellGlobal = append(endCellGlobal, structured(protoWave))
	}
	endCellGlobal = append(endCellGlobal,
		structured(protoEigen),
		// The density flag is written a second time at this position; both
		// reads are kept so the stream stays aligned.
		boolean("found_ground_state_density"),
		composite(
			scalar("ngx_fine", DTypeInt),
			scalar("ngy_fine", DTypeInt),
			scalar("ngz_fine", DTypeInt),
		),
		structured(protoDensity),
	)

	entries := []specEntry{
		{"BEGIN_ELECTRONIC", []Field{
			skip(),
			skip(),
			skip(),
			skip(), // nspins, re-read later
			skip(), // nbands, re-read later
			scalar("elec_temp", DTypeFloat),
			skip(),
			skip(),
			skip(),
			str("electronic_minimizer", 10),
			scalar("nelectrons", DTypeFloat),
			scalar("nup", DTypeFloat),
			scalar("ndown", DTypeFloat),
			scalar("spin", DTypeFloat),
			scalar("charge", DTypeFloat),
			str("spin_treatment", 20),
		}},
	}
	// Original cell, then the current cell under the scanner's _01 suffix.
	entries = append(entries, cellFields("")...)
	entries = append(entries, cellFields("_01")...)
	entries = append(entries,
		specEntry{"END_CELL_GLOBAL_01", endCellGlobal},
		specEntry{"E_FERMI", []Field{scalar("fermi_energy_second_spin", DTypeFloat)}},
		specEntry{"FORCES", []Field{
			array("forces", DTypeFloat, lit(3), ref("max_ions_in_species"), ref("num_species")),
		}},
		specEntry{"FORCE_CON", []Field{
			array("phonon_supercell_matrix", DTypeInt, lit(3), lit(3)),
			array("phonon_force_constant_matrix", DTypeFloat,
				lit(3), ref("num_ions"), lit(3), ref("num_ions"), ref("num_cells")),
			array("phonon_supercell_origins", DTypeInt, lit(3), ref("num_cells")),
			scalar("phonon_force_constant_row", DTypeInt),
		}},
		specEntry{"BORN_CHGS", []Field{
			array("born_charges", DTypeFloat, lit(3), lit(3), ref("num_ions")),
		}},
	)
	return entries
}
